// Package toast shows transient feedback notifications inside a session
// document.
//
// A notification is a Bootstrap alert appended to a fixed-position
// container in the top-right corner of the page. The container is created
// the first time a notification is shown and reused afterwards:
//
//	<div id="notification-container" style="position: fixed; top: 20px; right: 20px; z-index: 1050; max-width: 300px;">
//	    <div class="alert alert-success alert-dismissible fade show" role="alert">
//	        Recipe added to favorites!
//	        <button type="button" class="btn-close" data-bs-dismiss="alert" aria-label="Close"></button>
//	    </div>
//	</div>
//
// After the display duration the alert loses its "show" class, which
// starts the CSS fade, and after the fade duration it is removed.
//
// # Events
//
// Every notification is also handed to an Emitter under EventName, so a
// page script can mirror notifications into another toast library:
//
//	window.addEventListener("recipebox:toast", (e) => {
//	    const { level, message } = e.detail;
//	    myToasts[level](message);
//	});
//
// # Usage
//
// All Notifier methods must run on the session loop that owns the
// document:
//
//	n := toast.NewNotifier(doc, lp, toast.WithEmitter(session))
//	n.Show("Recipe added to favorites!", toast.LevelSuccess)
package toast

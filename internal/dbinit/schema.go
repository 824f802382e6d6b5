package dbinit

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection declares a collection with its validator and indexes.
type Collection struct {
	Name      string
	Validator bson.M
	Indexes   []mongo.IndexModel
}

func requiredString() bson.M {
	return bson.M{
		"bsonType":    "string",
		"description": "must be a string and is required",
	}
}

// RecipesValidator is the $jsonSchema validator of the recipes collection.
func RecipesValidator() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"name", "ingredients", "instructions", "cuisine", "difficulty"},
			"properties": bson.M{
				"name": requiredString(),
				"ingredients": bson.M{
					"bsonType":    "array",
					"description": "must be an array and is required",
					"items": bson.M{
						"bsonType": "object",
						"required": bson.A{"name", "quantity"},
						"properties": bson.M{
							"name":     requiredString(),
							"quantity": requiredString(),
						},
					},
				},
				"instructions": bson.M{
					"bsonType":    "array",
					"description": "must be an array of strings and is required",
					"items":       bson.M{"bsonType": "string"},
				},
				"cuisine": requiredString(),
				"difficulty": bson.M{
					"bsonType":    "string",
					"description": "must be a string and is required",
					"enum":        bson.A{"Easy", "Medium", "Hard"},
				},
			},
		},
	}
}

// UsersValidator is the $jsonSchema validator of the users collection.
func UsersValidator() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"username", "email", "password_hash"},
			"properties": bson.M{
				"username":      requiredString(),
				"email":         requiredString(),
				"password_hash": requiredString(),
			},
		},
	}
}

func ascending(field string) mongo.IndexModel {
	return mongo.IndexModel{Keys: bson.D{{Key: field, Value: 1}}}
}

func uniqueAscending(field string) mongo.IndexModel {
	return mongo.IndexModel{
		Keys:    bson.D{{Key: field, Value: 1}},
		Options: options.Index().SetUnique(true),
	}
}

// Schema returns the collections of the recipe platform in creation order.
func Schema() []Collection {
	return []Collection{
		{
			Name:      "recipes",
			Validator: RecipesValidator(),
			Indexes: []mongo.IndexModel{
				{Keys: bson.D{
					{Key: "name", Value: "text"},
					{Key: "tags", Value: "text"},
					{Key: "cuisine", Value: "text"},
				}},
				ascending("cuisine"),
				ascending("difficulty"),
				ascending("tags"),
				ascending("user_id"),
				ascending("created_at"),
			},
		},
		{
			Name:      "users",
			Validator: UsersValidator(),
			Indexes: []mongo.IndexModel{
				uniqueAscending("username"),
				uniqueAscending("email"),
				ascending("favorite_recipes"),
			},
		},
	}
}

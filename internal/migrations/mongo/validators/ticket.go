package validators

import "go.mongodb.org/mongo-driver/bson"

var TicketValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"enrollment_id",
			"ticket_type_id",
			"status",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"enrollment_id": bson.M{
				"bsonType": "string",
			},

			"ticket_type_id": bson.M{
				"bsonType": "string",
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"RESERVED",
					"PAID",
				},
			},
		},
	},
}

var TicketTypeValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"name",
			"is_remote",
			"includes_hotel",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"name": bson.M{
				"bsonType": "string",
			},

			"price": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
			},

			"is_remote": bson.M{
				"bsonType": "bool",
			},

			"includes_hotel": bson.M{
				"bsonType": "bool",
			},
		},
	},
}

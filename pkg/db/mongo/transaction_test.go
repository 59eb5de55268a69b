package mongo

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

func TestHelloSupportsTransactions(t *testing.T) {
	tests := []struct {
		name  string
		hello bson.M
		want  bool
	}{
		{"standalone", bson.M{"isWritablePrimary": true, "maxWireVersion": int32(21)}, false},
		{"replica set primary", bson.M{"isWritablePrimary": true, "setName": "rs0"}, true},
		{"replica set secondary", bson.M{"secondary": true, "setName": "rs0"}, true},
		{"mongos", bson.M{"msg": "isdbgrid"}, true},
		{"empty set name", bson.M{"setName": ""}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := helloSupportsTransactions(tt.hello); got != tt.want {
				t.Errorf("helloSupportsTransactions() = %v, want %v", got, tt.want)
			}
		})
	}
}

package contracts

import "github.com/julienschmidt/httprouter"

// Handler is a set of routes mounted on the application server.
type Handler interface {
	RegisterRoutes(*httprouter.Router)
}

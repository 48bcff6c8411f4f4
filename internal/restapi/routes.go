package restapi

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

func (api *RestAPI) SetRoutes(router *httprouter.Router) {
	router.GET("/api/graphs", api.graphsHandler)
	router.GET("/api/graphs/:index", api.graphHandler)
	router.GET("/api/graphs/:index/nodes", api.graphNodesHandler)
	router.GET("/api/graphs/:index/nodes/:stopId", api.graphNodeHandler)
	router.GET("/api/graphs/:index/edges", api.graphEdgesHandler)

	router.NotFound = http.HandlerFunc(api.sendNotFound)
}

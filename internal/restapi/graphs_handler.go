package restapi

import (
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"

	"github.com/transitlab/stopgraph/internal/models"
)

func (api *RestAPI) graphsHandler(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	api.sendResponse(w, r, models.NewListResponse(models.NewGraphEntries(api.BuildID, api.Layers), false))
}

func (api *RestAPI) graphHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	index, ok := api.layerIndex(w, r, ps)
	if !ok {
		return
	}

	entries := models.NewGraphEntries(api.BuildID, api.Layers)
	api.sendResponse(w, r, models.NewEntryResponse(entries[index]))
}

func (api *RestAPI) graphNodesHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	index, ok := api.layerIndex(w, r, ps)
	if !ok {
		return
	}
	offset, limit, ok := api.pagination(w, r)
	if !ok {
		return
	}

	nodes := models.NewNodeEntries(api.Layers[index].Graph)
	page, limitExceeded := paginate(nodes, offset, limit)
	api.sendResponse(w, r, models.NewListResponse(page, limitExceeded))
}

func (api *RestAPI) graphNodeHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	index, ok := api.layerIndex(w, r, ps)
	if !ok {
		return
	}

	stopID, err := strconv.ParseInt(ps.ByName("stopId"), 10, 64)
	if err != nil {
		api.validationErrorResponse(w, r, map[string][]string{
			"stopId": {"must be an integer stop ID"},
		})
		return
	}

	g := api.Layers[index].Graph
	node, found := g.Node(stopID)
	if !found {
		api.sendNotFound(w, r)
		return
	}

	api.sendResponse(w, r, models.NewEntryResponse(models.NodeEntry{Node: node, Degree: g.Degree(stopID)}))
}

func (api *RestAPI) graphEdgesHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	index, ok := api.layerIndex(w, r, ps)
	if !ok {
		return
	}
	offset, limit, ok := api.pagination(w, r)
	if !ok {
		return
	}

	edges := models.NewEdgeEntries(api.Layers[index].Graph)
	if raw := r.URL.Query().Get("stopId"); raw != "" {
		stopID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			api.validationErrorResponse(w, r, map[string][]string{
				"stopId": {"must be an integer stop ID"},
			})
			return
		}
		edges = edgesTouching(edges, stopID)
	}

	page, limitExceeded := paginate(edges, offset, limit)
	api.sendResponse(w, r, models.NewListResponse(page, limitExceeded))
}

// layerIndex resolves the :index parameter, answering the request itself
// when it is invalid or out of range.
func (api *RestAPI) layerIndex(w http.ResponseWriter, r *http.Request, ps httprouter.Params) (int, bool) {
	index, err := strconv.Atoi(ps.ByName("index"))
	if err != nil || index < 0 {
		api.validationErrorResponse(w, r, map[string][]string{
			"index": {"must be a non-negative integer"},
		})
		return 0, false
	}
	if index >= len(api.Layers) {
		api.sendNotFound(w, r)
		return 0, false
	}
	return index, true
}

func (api *RestAPI) pagination(w http.ResponseWriter, r *http.Request) (offset, limit int, ok bool) {
	fieldErrors := make(map[string][]string)
	query := r.URL.Query()

	for name, dst := range map[string]*int{"offset": &offset, "limit": &limit} {
		raw := query.Get(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			fieldErrors[name] = append(fieldErrors[name], "must be a non-negative integer")
			continue
		}
		*dst = n
	}

	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return 0, 0, false
	}
	return offset, limit, true
}

// paginate returns items[offset:offset+limit]; limit 0 means no limit.
func paginate[T any](items []T, offset, limit int) ([]T, bool) {
	if offset >= len(items) {
		return []T{}, false
	}
	items = items[offset:]
	if limit > 0 && len(items) > limit {
		return items[:limit], true
	}
	return items, false
}

func edgesTouching(edges []models.EdgeEntry, stopID int64) []models.EdgeEntry {
	filtered := make([]models.EdgeEntry, 0)
	for _, e := range edges {
		if e.From == stopID || e.To == stopID {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

package restapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/julienschmidt/httprouter"
	optd "github.com/opentraveldata/optd-go"
)

const (
	defaultNearbyRadiusKm = 20.0
	defaultSearchLimit    = 20
)

func (api *RestAPI) healthHandler(w http.ResponseWriter, r *http.Request) {
	api.sendResponse(w, map[string]string{"status": "ok"})
}

func (api *RestAPI) porHandler(w http.ResponseWriter, r *http.Request) {
	raw := httprouter.ParamsFromContext(r.Context()).ByName("geoid")
	if fieldErrors := api.checkParams(param{"geoid", raw, geoIDRules}); fieldErrors != nil {
		api.validationErrorResponse(w, fieldErrors)
		return
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		api.validationErrorResponse(w, map[string][]string{"geoid": {err.Error()}})
		return
	}

	idx, err := api.Indices.Index(r.Context())
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}
	rec, ok := idx.LookupByGeoID(id)
	if !ok {
		api.sendNotFound(w, "no POR with geoname id "+raw)
		return
	}
	api.sendResponse(w, rec)
}

func (api *RestAPI) iataHandler(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(httprouter.ParamsFromContext(r.Context()).ByName("code"))
	if fieldErrors := api.checkParams(param{"code", code, iataRules}); fieldErrors != nil {
		api.validationErrorResponse(w, fieldErrors)
		return
	}

	idx, err := api.Indices.Index(r.Context())
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}
	recs := idx.LookupByIATA(code)
	if len(recs) == 0 {
		api.sendNotFound(w, "unknown IATA code "+code)
		return
	}
	api.sendResponse(w, recs)
}

func (api *RestAPI) unlocodeHandler(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(httprouter.ParamsFromContext(r.Context()).ByName("code"))
	if fieldErrors := api.checkParams(param{"code", code, unlocodeRules}); fieldErrors != nil {
		api.validationErrorResponse(w, fieldErrors)
		return
	}

	idx, err := api.Indices.Index(r.Context())
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}
	recs := idx.LookupByUNLOCODE(code)
	if len(recs) == 0 {
		api.sendNotFound(w, "unknown UN/LOCODE "+code)
		return
	}
	api.sendResponse(w, recs)
}

func (api *RestAPI) servingHandler(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(httprouter.ParamsFromContext(r.Context()).ByName("code"))
	if fieldErrors := api.checkParams(param{"code", code, iataRules}); fieldErrors != nil {
		api.validationErrorResponse(w, fieldErrors)
		return
	}

	idx, err := api.Indices.Index(r.Context())
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}
	result, err := idx.ResolveServingPoints(code)
	if err != nil {
		var unknown *optd.UnknownIATACodeError
		if errors.As(err, &unknown) {
			api.sendNotFound(w, unknown.Error())
			return
		}
		api.serverErrorResponse(w, r, err)
		return
	}
	api.sendResponse(w, result)
}

func (api *RestAPI) nearbyHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	latStr, lngStr := q.Get("lat"), q.Get("lng")
	radiusStr, typeStr := q.Get("radius"), q.Get("type")

	fieldErrors := api.checkParams(
		param{"lat", latStr, "required,latitude"},
		param{"lng", lngStr, "required,longitude"},
		param{"radius", radiusStr, "omitempty,numeric"},
	)
	var filter func(string) bool
	if typeStr != "" {
		f, ok := optd.LocationTypeFilter(typeStr)
		if !ok {
			if fieldErrors == nil {
				fieldErrors = make(map[string][]string)
			}
			fieldErrors["type"] = append(fieldErrors["type"], "unknown location type "+strconv.Quote(typeStr))
		}
		filter = f
	}
	if fieldErrors != nil {
		api.validationErrorResponse(w, fieldErrors)
		return
	}

	lat, _ := strconv.ParseFloat(latStr, 64)
	lng, _ := strconv.ParseFloat(lngStr, 64)
	radius := defaultNearbyRadiusKm
	if radiusStr != "" {
		radius, _ = strconv.ParseFloat(radiusStr, 64)
	}

	idx, err := api.Indices.Index(r.Context())
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}
	found := idx.Nearby(lat, lng, radius, filter)
	if found == nil {
		found = []optd.NearbyPOR{}
	}
	api.sendResponse(w, found)
}

func (api *RestAPI) searchHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query, fuzzyStr, limitStr := q.Get("q"), q.Get("fuzzy"), q.Get("limit")

	if fieldErrors := api.checkParams(
		param{"q", query, "required,max=256"},
		param{"fuzzy", fuzzyStr, "omitempty,oneof=0 1 2 3"},
		param{"limit", limitStr, "omitempty,number"},
	); fieldErrors != nil {
		api.validationErrorResponse(w, fieldErrors)
		return
	}

	opts := optd.SearchOptions{Limit: defaultSearchLimit}
	if fuzzyStr != "" {
		opts.FuzzyDistance, _ = strconv.Atoi(fuzzyStr)
	}
	if limitStr != "" {
		opts.Limit, _ = strconv.Atoi(limitStr)
	}

	idx, err := api.Indices.Index(r.Context())
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}
	recs := idx.Search(query, opts)
	if recs == nil {
		recs = []optd.PORRecord{}
	}
	api.sendResponse(w, recs)
}

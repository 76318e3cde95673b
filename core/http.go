package core

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
)

func repondreJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			Errorf("encodage JSON: %v", err)
		}
	}
}

func erreurJSON(w http.ResponseWriter, status int, message string) {
	repondreJSON(w, status, map[string]string{"error": message})
}

func idParam(ps httprouter.Params, nom string) (int, bool) {
	id, err := strconv.Atoi(ps.ByName(nom))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func decodeJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

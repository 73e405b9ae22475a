package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bryanwahyu/nutriguard/internal/domain/profiles"
	"github.com/bryanwahyu/nutriguard/internal/middleware"
)

// pathIDs reads and validates the named URL params in order
func pathIDs(req *http.Request, names ...string) ([]string, error) {
	out := make([]string, len(names))
	for i, n := range names {
		v := chi.URLParam(req, n)
		if err := middleware.ValidateID(n, v); err != nil {
			return nil, badRequest("%v", err)
		}
		out[i] = v
	}
	return out, nil
}

func (r *Router) handleGetProfile(w http.ResponseWriter, req *http.Request) error {
	ids, err := pathIDs(req, "userId")
	if err != nil {
		return err
	}
	p, err := r.profiles.GetProfile(req.Context(), ids[0])
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, p)
}

func (r *Router) handleSaveProfile(w http.ResponseWriter, req *http.Request) error {
	ids, err := pathIDs(req, "userId")
	if err != nil {
		return err
	}
	var body profiles.UserProfile
	if err := decodeJSON(w, req, &body); err != nil {
		return err
	}
	p, err := r.profiles.SaveProfile(req.Context(), ids[0], body)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, p)
}

func (r *Router) handleAddChild(w http.ResponseWriter, req *http.Request) error {
	ids, err := pathIDs(req, "userId")
	if err != nil {
		return err
	}
	var body profiles.ChildProfile
	if err := decodeJSON(w, req, &body); err != nil {
		return err
	}
	c, err := r.profiles.AddChild(req.Context(), ids[0], body)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusCreated, c)
}

func (r *Router) handleUpdateChild(w http.ResponseWriter, req *http.Request) error {
	ids, err := pathIDs(req, "userId", "childId")
	if err != nil {
		return err
	}
	var body profiles.ChildProfile
	if err := decodeJSON(w, req, &body); err != nil {
		return err
	}
	c, err := r.profiles.UpdateChild(req.Context(), ids[0], ids[1], body)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, c)
}

func (r *Router) handleRemoveChild(w http.ResponseWriter, req *http.Request) error {
	ids, err := pathIDs(req, "userId", "childId")
	if err != nil {
		return err
	}
	if err := r.profiles.RemoveChild(req.Context(), ids[0], ids[1]); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (r *Router) handleListMealPlans(w http.ResponseWriter, req *http.Request) error {
	ids, err := pathIDs(req, "userId")
	if err != nil {
		return err
	}
	plans, err := r.profiles.ListMealPlans(req.Context(), ids[0])
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, plans)
}

func (r *Router) handleCreateMealPlan(w http.ResponseWriter, req *http.Request) error {
	ids, err := pathIDs(req, "userId")
	if err != nil {
		return err
	}
	var body profiles.MealPlan
	if err := decodeJSON(w, req, &body); err != nil {
		return err
	}
	mp, err := r.profiles.CreateMealPlan(req.Context(), ids[0], body)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusCreated, mp)
}

func (r *Router) handleGetMealPlan(w http.ResponseWriter, req *http.Request) error {
	ids, err := pathIDs(req, "userId", "planId")
	if err != nil {
		return err
	}
	mp, err := r.profiles.GetMealPlan(req.Context(), ids[0], ids[1])
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, mp)
}

func (r *Router) handleDeleteMealPlan(w http.ResponseWriter, req *http.Request) error {
	ids, err := pathIDs(req, "userId", "planId")
	if err != nil {
		return err
	}
	if err := r.profiles.DeleteMealPlan(req.Context(), ids[0], ids[1]); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/aretw0/waypoint/internal/validator"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/session"
	"github.com/aretw0/waypoint/pkg/store"
	"github.com/go-chi/chi/v5"
)

type detailsRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"isActive"`
}

func (d detailsRequest) apply(st *store.Store) {
	if d.Name != nil || d.Description != nil {
		st.UpdateDetails(store.DetailsPatch{Name: d.Name, Description: d.Description})
	}
	if d.IsActive != nil {
		st.SetActive(*d.IsActive)
	}
}

type openResponse struct {
	Journey *domain.Journey    `json:"journey"`
	Repairs []domain.Violation `json:"repairs,omitempty"`
}

type entryRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type draftRequest struct {
	NodeID     string `json:"nodeId"`
	FunctionID string `json:"functionId"`
}

type draftResponse struct {
	Mapping domain.NodeFunctionMapping `json:"mapping"`
	State   domain.DerivationState     `json:"state"`
}

// withSession runs fn on the open journey named by the {id} path parameter and
// answers with the mapped error when it fails.
func (s *Server) withSession(w http.ResponseWriter, r *http.Request, fn func(sess *session.Session) error) bool {
	err := s.sessions.WithSession(r.Context(), chi.URLParam(r, "id"), func(ctx context.Context, sess *session.Session) error {
		return fn(sess)
	})
	if err != nil {
		s.fail(w, r, err)
		return false
	}
	return true
}

func (s *Server) snapshot(w http.ResponseWriter, r *http.Request) (*domain.Journey, bool) {
	var j *domain.Journey
	ok := s.withSession(w, r, func(sess *session.Session) error {
		j = sess.Store.Snapshot()
		return nil
	})
	return j, ok
}

// update applies fn to the item named by {itemId} and answers with the new snapshot.
func (s *Server) update(w http.ResponseWriter, r *http.Request, fn func(st *store.Store, itemID string) error) {
	itemID := chi.URLParam(r, "itemId")
	var j *domain.Journey
	if !s.withSession(w, r, func(sess *session.Session) error {
		if err := fn(sess.Store, itemID); err != nil {
			return err
		}
		j = sess.Store.Snapshot()
		return nil
	}) {
		return
	}
	writeJSON(w, http.StatusOK, j)
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request, fn func(st *store.Store, itemID string) error) {
	itemID := chi.URLParam(r, "itemId")
	if !s.withSession(w, r, func(sess *session.Session) error {
		return fn(sess.Store, itemID)
	}) {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListJourneys handles the GET /journeys request.
func (s *Server) ListJourneys(w http.ResponseWriter, r *http.Request) {
	list, err := s.sessions.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// CreateJourney handles the POST /journeys request. The body is optional.
func (s *Server) CreateJourney(w http.ResponseWriter, r *http.Request) {
	var in detailsRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error(), Code: "malformed_body"})
		return
	}

	sess, err := s.sessions.Create(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var j *domain.Journey
	err = s.sessions.WithSession(r.Context(), sess.JourneyID, func(ctx context.Context, sess *session.Session) error {
		in.apply(sess.Store)
		j = sess.Store.Snapshot()
		return nil
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.logger.Info("Journey created", "journey_id", j.ID)
	writeJSON(w, http.StatusCreated, j)
}

// GetJourney handles the GET /journeys/{id} request.
func (s *Server) GetJourney(w http.ResponseWriter, r *http.Request) {
	j, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	s.metrics.ObserveSnapshot(j)
	writeJSON(w, http.StatusOK, j)
}

// UpdateJourney handles the PATCH /journeys/{id} request.
func (s *Server) UpdateJourney(w http.ResponseWriter, r *http.Request) {
	var in detailsRequest
	if !s.decode(w, r, &in) {
		return
	}
	s.update(w, r, func(st *store.Store, _ string) error {
		in.apply(st)
		return nil
	})
}

// DeleteJourney handles the DELETE /journeys/{id} request.
func (s *Server) DeleteJourney(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// OpenJourney handles the POST /journeys/{id}/open request.
func (s *Server) OpenJourney(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Open(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	j, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, openResponse{Journey: j, Repairs: sess.Repairs})
}

// SaveJourney handles the POST /journeys/{id}/save request.
func (s *Server) SaveJourney(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Save(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CloseJourney handles the POST /journeys/{id}/close request. Unsaved changes are lost.
func (s *Server) CloseJourney(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Close(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ValidateJourney handles the GET /journeys/{id}/validate request.
func (s *Server) ValidateJourney(w http.ResponseWriter, r *http.Request) {
	j, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, validator.Validate(j))
}

// AddProperty handles the POST /journeys/{id}/properties request.
func (s *Server) AddProperty(w http.ResponseWriter, r *http.Request) {
	var in domain.Property
	if !s.decode(w, r, &in) {
		return
	}
	var out domain.Property
	if !s.withSession(w, r, func(sess *session.Session) error {
		var err error
		out, err = sess.Store.AddProperty(in.Key, in.Type, in.ValidationCondition)
		return err
	}) {
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

// UpdateProperty handles the PATCH /journeys/{id}/properties/{itemId} request.
// A key rename is carried into every function that names the old key.
func (s *Server) UpdateProperty(w http.ResponseWriter, r *http.Request) {
	var patch store.PropertyPatch
	if !s.decode(w, r, &patch) {
		return
	}
	s.update(w, r, func(st *store.Store, id string) error {
		return st.UpdateProperty(id, patch)
	})
}

// DeleteProperty handles the DELETE /journeys/{id}/properties/{itemId} request.
func (s *Server) DeleteProperty(w http.ResponseWriter, r *http.Request) {
	s.remove(w, r, func(st *store.Store, id string) error {
		return st.DeleteProperty(id)
	})
}

// AddNode handles the POST /journeys/{id}/nodes request.
func (s *Server) AddNode(w http.ResponseWriter, r *http.Request) {
	var in domain.Node
	if !s.decode(w, r, &in) {
		return
	}
	var out domain.Node
	if !s.withSession(w, r, func(sess *session.Session) error {
		var err error
		out, err = sess.Store.AddNode(in)
		return err
	}) {
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

// UpdateNode handles the PATCH /journeys/{id}/nodes/{itemId} request. Sending x or
// y pins that axis; "unpin": true hands the node back to the grid.
func (s *Server) UpdateNode(w http.ResponseWriter, r *http.Request) {
	var patch store.NodePatch
	if !s.decode(w, r, &patch) {
		return
	}
	s.update(w, r, func(st *store.Store, id string) error {
		return st.UpdateNode(id, patch)
	})
}

// DeleteNode handles the DELETE /journeys/{id}/nodes/{itemId} request.
func (s *Server) DeleteNode(w http.ResponseWriter, r *http.Request) {
	s.remove(w, r, func(st *store.Store, id string) error {
		return st.DeleteNode(id)
	})
}

// AddFunction handles the POST /journeys/{id}/functions request.
func (s *Server) AddFunction(w http.ResponseWriter, r *http.Request) {
	var in domain.Function
	if !s.decode(w, r, &in) {
		return
	}
	s.addFunction(w, r, in)
}

func (s *Server) addFunction(w http.ResponseWriter, r *http.Request, fn domain.Function) {
	var out domain.Function
	if !s.withSession(w, r, func(sess *session.Session) error {
		var err error
		out, err = sess.Store.AddFunction(fn)
		return err
	}) {
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

// UpdateFunction handles the PATCH /journeys/{id}/functions/{itemId} request.
func (s *Server) UpdateFunction(w http.ResponseWriter, r *http.Request) {
	var patch store.FunctionPatch
	if !s.decode(w, r, &patch) {
		return
	}
	s.update(w, r, func(st *store.Store, id string) error {
		return st.UpdateFunction(id, patch)
	})
}

// DeleteFunction handles the DELETE /journeys/{id}/functions/{itemId} request.
func (s *Server) DeleteFunction(w http.ResponseWriter, r *http.Request) {
	s.remove(w, r, func(st *store.Store, id string) error {
		return st.DeleteFunction(id)
	})
}

// AvailableFunctions handles the GET /journeys/{id}/functions/available request.
// An unreachable catalog degrades to the journey's own functions.
func (s *Server) AvailableFunctions(w http.ResponseWriter, r *http.Request) {
	j, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	var remote []domain.Function
	if s.catalog != nil {
		fns, err := s.catalog.ListFunctions(r.Context())
		if err != nil {
			s.logger.Warn("Catalog unavailable, listing journey functions only", "error", err)
		} else {
			remote = fns
		}
	}
	writeJSON(w, http.StatusOK, domain.MergeFunctions(j.Functions, remote))
}

// ImportFunction handles the POST /journeys/{id}/functions/{itemId}/import request.
func (s *Server) ImportFunction(w http.ResponseWriter, r *http.Request) {
	if s.catalog == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "no function catalog configured", Code: "catalog_disabled"})
		return
	}
	fns, err := s.catalog.ListFunctions(r.Context())
	if err != nil {
		s.logger.Error("Catalog request failed", "error", err)
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error(), Code: "catalog_unavailable"})
		return
	}
	refID := chi.URLParam(r, "itemId")
	for _, fn := range fns {
		if fn.ReferenceID == refID {
			s.addFunction(w, r, fn)
			return
		}
	}
	s.fail(w, r, fmt.Errorf("%w: catalog function %s", domain.ErrNotFound, refID))
}

func entryIndex(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "index")
	i, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", domain.ErrIndexOutOfRange, raw)
	}
	return i, nil
}

// AddFunctionEntry handles the POST /journeys/{id}/functions/{itemId}/entries/{field} request.
func (s *Server) AddFunctionEntry(w http.ResponseWriter, r *http.Request) {
	var in entryRequest
	if !s.decode(w, r, &in) {
		return
	}
	field := domain.FunctionField(chi.URLParam(r, "field"))
	s.update(w, r, func(st *store.Store, id string) error {
		return st.AddFunctionEntry(id, field, in.Key, in.Value)
	})
}

// UpdateFunctionEntry handles the PUT .../entries/{field}/{index} request.
func (s *Server) UpdateFunctionEntry(w http.ResponseWriter, r *http.Request) {
	var in entryRequest
	if !s.decode(w, r, &in) {
		return
	}
	index, err := entryIndex(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	field := domain.FunctionField(chi.URLParam(r, "field"))
	s.update(w, r, func(st *store.Store, id string) error {
		return st.UpdateFunctionEntry(id, field, index, in.Key, in.Value)
	})
}

// RemoveFunctionEntry handles the DELETE .../entries/{field}/{index} request.
func (s *Server) RemoveFunctionEntry(w http.ResponseWriter, r *http.Request) {
	index, err := entryIndex(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	field := domain.FunctionField(chi.URLParam(r, "field"))
	s.update(w, r, func(st *store.Store, id string) error {
		return st.RemoveFunctionEntry(id, field, index)
	})
}

// AddMapping handles the POST /journeys/{id}/mappings request. Omitting
// variableMappings derives them from the function.
func (s *Server) AddMapping(w http.ResponseWriter, r *http.Request) {
	var in domain.NodeFunctionMapping
	if !s.decode(w, r, &in) {
		return
	}
	var out domain.NodeFunctionMapping
	if !s.withSession(w, r, func(sess *session.Session) error {
		var err error
		out, err = sess.Store.AddMapping(in)
		return err
	}) {
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

// DraftMapping handles the POST /journeys/{id}/mappings/draft request. Nothing is
// committed.
func (s *Server) DraftMapping(w http.ResponseWriter, r *http.Request) {
	var in draftRequest
	if !s.decode(w, r, &in) {
		return
	}
	var out draftResponse
	if !s.withSession(w, r, func(sess *session.Session) error {
		j := sess.Store.Snapshot()
		if _, ok := j.Node(in.NodeID); !ok {
			return fmt.Errorf("%w: node %s", domain.ErrDanglingReference, in.NodeID)
		}
		fn, ok := j.Function(in.FunctionID)
		if !ok {
			return fmt.Errorf("%w: function %s", domain.ErrDanglingReference, in.FunctionID)
		}
		draft := store.NewMappingDraft(in.NodeID)
		draft.SelectFunction(fn)
		out = draftResponse{Mapping: draft.Mapping(), State: draft.State()}
		return nil
	}) {
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// UpdateMapping handles the PATCH /journeys/{id}/mappings/{itemId} request.
func (s *Server) UpdateMapping(w http.ResponseWriter, r *http.Request) {
	var patch store.MappingPatch
	if !s.decode(w, r, &patch) {
		return
	}
	s.update(w, r, func(st *store.Store, id string) error {
		return st.UpdateMapping(id, patch)
	})
}

// DeleteMapping handles the DELETE /journeys/{id}/mappings/{itemId} request.
func (s *Server) DeleteMapping(w http.ResponseWriter, r *http.Request) {
	s.remove(w, r, func(st *store.Store, id string) error {
		return st.DeleteMapping(id)
	})
}

// AddEdge handles the POST /journeys/{id}/edges request.
func (s *Server) AddEdge(w http.ResponseWriter, r *http.Request) {
	var in domain.Edge
	if !s.decode(w, r, &in) {
		return
	}
	var out domain.Edge
	if !s.withSession(w, r, func(sess *session.Session) error {
		var err error
		out, err = sess.Store.AddEdge(in)
		return err
	}) {
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

// UpdateEdge handles the PATCH /journeys/{id}/edges/{itemId} request.
func (s *Server) UpdateEdge(w http.ResponseWriter, r *http.Request) {
	var patch store.EdgePatch
	if !s.decode(w, r, &patch) {
		return
	}
	s.update(w, r, func(st *store.Store, id string) error {
		return st.UpdateEdge(id, patch)
	})
}

// DeleteEdge handles the DELETE /journeys/{id}/edges/{itemId} request.
func (s *Server) DeleteEdge(w http.ResponseWriter, r *http.Request) {
	s.remove(w, r, func(st *store.Store, id string) error {
		return st.DeleteEdge(id)
	})
}

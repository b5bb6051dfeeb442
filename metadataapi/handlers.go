// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package metadataapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/tiny-spl/tinyspl/balance"
	"github.com/tiny-spl/tinyspl/metabuf"
	"github.com/tiny-spl/tinyspl/pubkey"
	"github.com/tiny-spl/tinyspl/registry"
)

const AmountTraitType = "Amount"

// Attribute is a single metadata trait
type Attribute struct {
	TraitType string `json:"trait_type"`
	Value     string `json:"value"`
}

// CollectionMetadata is the document served for a balance leaf URI
type CollectionMetadata struct {
	Name       string      `json:"name"`
	Symbol     string      `json:"symbol"`
	Uri        string      `json:"uri"`
	Collection string      `json:"collection"`
	Attributes []Attribute `json:"attributes"`
}

// HealthResponse is returned by GET /health
type HealthResponse struct {
	IsHealthy bool `json:"is_healthy"`
}

// ErrorResponse is the body of every non-2xx reply
type ErrorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck,errchkjson
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int) {
	writeJSON(w, status, ErrorResponse{
		Status:  status,
		Message: http.StatusText(status),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{IsHealthy: true})
}

// handleCollection handles GET /collection?id=<mint>&amount=<n>, the
// locator built by balance.Uri
func (s *Server) handleCollection(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	mint, err := pubkey.FromBase58(query.Get(balance.CollectionQueryParam))
	if err != nil {
		writeError(w, http.StatusNotFound)
		return
	}
	amount, err := strconv.ParseUint(query.Get(balance.AmountQueryParam), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest)
		return
	}
	md, err := s.config.Registry.Lookup(r.Context(), mint)
	if err != nil {
		if errors.Is(err, registry.ErrUnknownCollection) {
			writeError(w, http.StatusNotFound)
			return
		}
		s.logger.Error(
			"failed to look up collection",
			"collection", mint.String(),
			"error", err,
		)
		writeError(w, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, CollectionMetadata{
		Name:       md.Name,
		Symbol:     md.Symbol,
		Uri:        md.Uri,
		Collection: mint.String(),
		Attributes: []Attribute{
			{
				TraitType: AmountTraitType,
				Value:     balance.FormatAmount(amount),
			},
		},
	})
}

// handleBuffer handles GET /buffer/{id} and returns the JSON document held
// in a logging metadata buffer
func (s *Server) handleBuffer(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil || s.config.Buffers == nil {
		writeError(w, http.StatusNotFound)
		return
	}
	data, err := s.config.Buffers.Contents(id)
	if err != nil {
		if errors.Is(err, metabuf.ErrBufferNotFound) {
			writeError(w, http.StatusNotFound)
			return
		}
		s.logger.Error("failed to read buffer", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError)
		return
	}
	// Unwritten space at the end of a buffer is zero filled
	data = bytes.TrimRight(data, "\x00")
	if !json.Valid(data) {
		writeError(w, http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck
	w.Write(data)
}

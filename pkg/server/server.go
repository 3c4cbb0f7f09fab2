/*
 * Copyright (C) 2024 IBM, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 *
 */

package server

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/intentwatch/surge-pipeline/pkg/config"
	"github.com/intentwatch/surge-pipeline/pkg/detect"
	jsoniter "github.com/json-iterator/go"
	log "github.com/sirupsen/logrus"
)

var slog = log.WithField("component", "server.Server")

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Server exposes the analysis engine over HTTP for the alerting and UI layers.
type Server struct {
	detector *detect.Detector
	srv      *http.Server
	ready    atomic.Bool
}

type analyzeRequest struct {
	Series  *detect.TimeSeries      `json:"series"`
	Context *detect.AnalysisContext `json:"context,omitempty"`
}

func New(detector *detect.Detector, opts *config.Server) *Server {
	s := &Server{detector: detector}
	s.srv = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", opts.Address, opts.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/analyze", s.handleAnalyze)
	mux.HandleFunc("/seasonal", s.handleSeasonal)
	mux.HandleFunc("/config", s.handleConfig)
	return mux
}

// Start serves until Shutdown is called.
func (s *Server) Start() {
	s.ready.Store(true)
	go func() {
		slog.Infof("analysis server listening on %s", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Errorf("analysis server stopped: %v", err)
		}
	}()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.ready.Store(false)
	return s.srv.Shutdown(ctx)
}

func (s *Server) IsAlive() error {
	return nil
}

func (s *Server) IsReady() error {
	if !s.ready.Load() {
		return fmt.Errorf("server not started")
	}
	return nil
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "use POST")
		return
	}
	req := analyzeRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if req.Series == nil {
		writeError(w, http.StatusBadRequest, "missing series")
		return
	}
	result := s.detector.Analyze(req.Series, req.Context)
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSeasonal(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "use POST")
		return
	}
	series := detect.TimeSeries{}
	if err := json.NewDecoder(r.Body).Decode(&series); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	writeJSON(w, http.StatusOK, s.detector.DetectSeasonalPatterns(&series))
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		cfg := s.detector.Config()
		writeJSON(w, http.StatusOK, &cfg)
	case http.MethodPut:
		partial := map[string]interface{}{}
		if err := json.NewDecoder(r.Body).Decode(&partial); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
			return
		}
		if err := s.detector.UpdateConfig(partial); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		cfg := s.detector.Config()
		writeJSON(w, http.StatusOK, &cfg)
	default:
		writeError(w, http.StatusMethodNotAllowed, "use GET or PUT")
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Errorf("error writing response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

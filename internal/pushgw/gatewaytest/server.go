// Package gatewaytest provides an in-process fake Pushgateway for tests.
//
// The fake accepts PUT pushes, decodes the exposition body and keeps the
// latest push per grouping key, mirroring the gateway's replace semantics.
package gatewaytest

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

// Push is one request received by the fake gateway.
type Push struct {
	Job      string
	Grouping map[string]string
	Families []*dto.MetricFamily
	Header   http.Header
}

// Family returns the pushed family with the given name, or nil.
func (p Push) Family(name string) *dto.MetricFamily {
	for _, mf := range p.Families {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

// Server is a fake Pushgateway backed by httptest.Server.
type Server struct {
	*httptest.Server

	mu         sync.Mutex
	pushes     []Push
	groups     map[string]Push
	failStatus int
	failBody   string
}

// New starts a fake gateway. Callers must Close it.
func New() *Server {
	s := &Server{groups: make(map[string]Push)}

	r := chi.NewRouter()
	r.Put("/metrics/job/{job}", s.handlePut)
	r.Put("/metrics/job/{job}/*", s.handlePut)

	s.Server = httptest.NewServer(r)
	return s
}

// FailWith makes every following push fail with status and body.
func (s *Server) FailWith(status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failStatus = status
	s.failBody = body
}

// Pushes returns all accepted pushes in arrival order.
func (s *Server) Pushes() []Push {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Push, len(s.pushes))
	copy(out, s.pushes)
	return out
}

// Current returns the stored metrics for job and grouping, i.e. the most
// recent push under that grouping key.
func (s *Server) Current(job string, grouping map[string]string) (Push, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.groups[groupKey(job, grouping)]
	return p, ok
}

func (s *Server) handlePut(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	status, body := s.failStatus, s.failBody
	s.mu.Unlock()
	if status != 0 {
		http.Error(w, body, status)
		return
	}

	job := chi.URLParam(r, "job")
	grouping, err := parseGrouping(chi.URLParam(r, "*"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	families, err := decodeFamilies(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	p := Push{
		Job:      job,
		Grouping: grouping,
		Families: families,
		Header:   r.Header.Clone(),
	}

	s.mu.Lock()
	s.pushes = append(s.pushes, p)
	s.groups[groupKey(job, grouping)] = p
	s.mu.Unlock()

	w.WriteHeader(http.StatusOK)
}

func decodeFamilies(r *http.Request) ([]*dto.MetricFamily, error) {
	dec := expfmt.NewDecoder(r.Body, expfmt.ResponseFormat(r.Header))
	var families []*dto.MetricFamily
	for {
		mf := &dto.MetricFamily{}
		if err := dec.Decode(mf); err != nil {
			if errors.Is(err, io.EOF) {
				return families, nil
			}
			return nil, err
		}
		families = append(families, mf)
	}
}

func parseGrouping(rest string) (map[string]string, error) {
	grouping := make(map[string]string)
	rest = strings.Trim(rest, "/")
	if rest == "" {
		return grouping, nil
	}
	parts := strings.Split(rest, "/")
	if len(parts)%2 != 0 {
		return nil, errors.New("odd number of grouping path segments")
	}
	for i := 0; i < len(parts); i += 2 {
		grouping[parts[i]] = parts[i+1]
	}
	return grouping, nil
}

func groupKey(job string, grouping map[string]string) string {
	keys := make([]string, 0, len(grouping))
	for k := range grouping {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(job)
	for _, k := range keys {
		b.WriteString("/" + k + "=" + grouping[k])
	}
	return b.String()
}

package http

import (
	"encoding/json"
	"mime/multipart"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/cyberportal/pkg/domain/model"
	"github.com/secmon-lab/cyberportal/pkg/domain/types"
	"github.com/secmon-lab/cyberportal/pkg/usecase"
)

const (
	evidenceFilePrefix = "evidence_"
	evidenceURLPrefix  = "url_"
)

// parseReport reads a multipart report form. File parts named evidence_N
// become file evidence in N order, followed by url_N text parts. File bytes
// are discarded; only names and content types are kept.
func (s *Server) parseReport(w http.ResponseWriter, r *http.Request) (*usecase.SubmitIncidentInput, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadSize)
	if err := r.ParseMultipartForm(s.maxUploadSize); err != nil {
		return nil, goerr.Wrap(usecase.ErrInvalidReport, "failed to parse multipart form", goerr.V("error", err.Error()))
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	form := r.MultipartForm
	in := &usecase.SubmitIncidentInput{
		Category:    types.ThreatCategory(strings.TrimSpace(formValue(form, "category"))),
		Description: formValue(form, "description"),
		SubmittedBy: strings.TrimSpace(formValue(form, "submittedBy")),
		Unit:        strings.TrimSpace(formValue(form, "unit")),
	}

	for _, key := range sortedKeys(form.File, evidenceFilePrefix) {
		for _, fh := range form.File[key] {
			in.Evidence = append(in.Evidence, fileEvidence(fh))
		}
	}
	for _, key := range sortedKeys(form.Value, evidenceURLPrefix) {
		for _, v := range form.Value[key] {
			if u := strings.TrimSpace(v); u != "" {
				in.Evidence = append(in.Evidence, model.Evidence{Name: u, Type: model.EvidenceTypeURL, URL: u})
			}
		}
	}

	if raw := formValue(form, "analysisResult"); raw != "" {
		var a analysisResultResponse
		if err := json.Unmarshal([]byte(raw), &a); err != nil {
			return nil, goerr.Wrap(usecase.ErrInvalidReport, "malformed analysisResult field", goerr.V("error", err.Error()))
		}
		in.Analysis = &model.AnalysisResult{
			Status:         a.Status,
			ThreatType:     a.ThreatType,
			Confidence:     a.Confidence,
			Indicators:     a.Indicators,
			Recommendation: a.Recommendation,
		}
	}

	return in, nil
}

func formValue(form *multipart.Form, key string) string {
	if vs := form.Value[key]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}

func fileEvidence(fh *multipart.FileHeader) model.Evidence {
	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return model.Evidence{Name: fh.Filename, Type: contentType}
}

// sortedKeys returns the keys of m starting with prefix, ordered by their
// numeric suffix. Non-numeric suffixes sort after numeric ones, by name.
func sortedKeys[T any](m map[string]T, prefix string) []string {
	var keys []string
	for k := range m {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}

	index := func(k string) (int, bool) {
		n, err := strconv.Atoi(strings.TrimPrefix(k, prefix))
		return n, err == nil
	}
	sort.Slice(keys, func(i, j int) bool {
		a, aok := index(keys[i])
		b, bok := index(keys[j])
		switch {
		case aok && bok:
			return a < b
		case aok != bok:
			return aok
		default:
			return keys[i] < keys[j]
		}
	})
	return keys
}

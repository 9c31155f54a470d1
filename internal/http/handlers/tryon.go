package handlers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"wardrobe/internal/garments"
	"wardrobe/internal/imageref"
	"wardrobe/internal/metrics"
	"wardrobe/internal/middleware"
	"wardrobe/internal/normalize"
	"wardrobe/internal/relay"
	"wardrobe/internal/tryon"
)

var maxBodyBytes int64 = 32 << 20

// TryOnProxy forwards the body to the try-on function and returns the
// upstream status and JSON body.
func (a *App) TryOnProxy(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if tooLarge(err) {
		a.proxyError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}
	if err != nil || !json.Valid(body) {
		a.proxyError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	status, payload, err := a.Relay.Forward(r.Context(), relay.FunctionTryOn, body)
	metrics.RecordRelay(relay.FunctionTryOn, status)
	if err != nil {
		a.Logger.Error().Err(err).Str("request_id", middleware.RequestIDFromContext(r.Context())).Msg("try-on proxy failed")
		a.proxyError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeRaw(w, status, payload)
}

type extractItemsRequest struct {
	Image string `json:"image"`
}

// ExtractItems forwards a photo to the extract-items function.
func (a *App) ExtractItems(w http.ResponseWriter, r *http.Request) {
	var req extractItemsRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		if tooLarge(err) {
			a.proxyError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		a.proxyError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Image) == "" {
		a.proxyError(w, http.StatusBadRequest, "Image is required")
		return
	}
	body, _ := json.Marshal(map[string]string{"base64_person": req.Image})
	status, payload, err := a.Relay.Forward(r.Context(), relay.FunctionExtractItems, body)
	metrics.RecordRelay(relay.FunctionExtractItems, status)
	if err != nil {
		a.Logger.Error().Err(err).Msg("extract-items proxy failed")
		a.proxyError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if status < 200 || status >= 300 {
		msg := gjson.GetBytes(payload, "error").String()
		if msg == "" {
			msg = "Edge Function failed"
		}
		a.proxyError(w, http.StatusInternalServerError, msg)
		return
	}
	writeRaw(w, http.StatusOK, payload)
}

type runTryOnRequest struct {
	Photo    string   `json:"photo"`
	Garments []string `json:"garments"`
	ItemIDs  []int64  `json:"item_ids"`
	OutfitID int64    `json:"outfit_id"`
	DeepLink string   `json:"deep_link"` // query string with outfit, outfits or items
}

type runTryOnResponse struct {
	AttemptID string `json:"attempt_id,omitempty"`
	State     string `json:"state"`
	Image     string `json:"image,omitempty"`
	Filename  string `json:"filename,omitempty"`
	Message   string `json:"message,omitempty"`
	ErrorKind string `json:"error_kind,omitempty"`
}

// RunTryOn performs a whole try-on attempt server side: garment set
// assembly, normalization, the upstream call and image extraction.
func (a *App) RunTryOn(w http.ResponseWriter, r *http.Request) {
	var req runTryOnRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		if tooLarge(err) {
			a.error(w, http.StatusRequestEntityTooLarge, "too_large", "request body too large")
			return
		}
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	set := garments.New()
	if req.DeepLink != "" {
		params, err := url.ParseQuery(strings.TrimPrefix(req.DeepLink, "?"))
		if err != nil {
			a.error(w, http.StatusBadRequest, "bad_request", "invalid deep_link")
			return
		}
		set.SeedFromDeepLink(params)
	}
	set.Add(req.Garments...)
	ids := req.ItemIDs
	if req.OutfitID > 0 {
		if a.Wardrobe == nil {
			a.error(w, http.StatusServiceUnavailable, "unavailable", "wardrobe lookups are disabled")
			return
		}
		outfitIDs, err := a.Wardrobe.OutfitItemIDs(r.Context(), req.OutfitID)
		if err != nil {
			a.error(w, http.StatusInternalServerError, "internal", "failed to load outfit")
			return
		}
		ids = append(ids, outfitIDs...)
	}
	set.AddWardrobeItems(ids...)

	session, err := tryon.NewSession(tryon.Options{
		Client:     tryon.RelayClient{Relay: a.Relay},
		Normalizer: a.Normalizer,
		Garments:   set,
		Resize:     a.resizeOptions(),
		Timeout:    a.tryOnTimeout(),
		Recorder:   a.Recorder,
		Logger:     &a.Logger,
	})
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to start try-on")
		return
	}
	defer session.Close()

	if err := setSessionPhoto(session, req.Photo); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid photo")
		return
	}

	res, _ := session.Submit(r.Context())
	out := runTryOnResponse{
		AttemptID: res.AttemptID,
		State:     res.State.String(),
		Image:     res.ImageURI,
		Message:   res.Message(),
	}
	if res.ImageURI != "" {
		out.Filename = tryon.Filename(res.ImageURI, time.Now())
	}
	if res.Err != nil {
		out.ErrorKind = res.Err.Kind.String()
	}
	a.json(w, statusFor(res), out)
}

func (a *App) tryOnTimeout() time.Duration {
	if a.Config == nil {
		return 0
	}
	return a.Config.TryOnTimeout
}

func (a *App) resizeOptions() normalize.ResizeOptions {
	if a.Config == nil {
		return normalize.ResizeOptions{}
	}
	return normalize.ResizeOptions{MaxDimension: a.Config.MaxDimension, Quality: a.Config.JPEGQuality}
}

// setSessionPhoto bounds inline photos; URLs are used as they are.
func setSessionPhoto(s *tryon.Session, raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	ref := imageref.Parse(raw)
	if ref.Kind != imageref.KindInline {
		s.SetPhoto(ref.String())
		return nil
	}
	data, err := base64.StdEncoding.DecodeString(imageref.Payload(ref.Data))
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return errors.New("empty photo")
	}
	return s.UploadPhoto(data)
}

func statusFor(res tryon.Result) int {
	if res.Err == nil {
		return http.StatusOK
	}
	switch res.Err.Kind {
	case tryon.KindValidation:
		return http.StatusBadRequest
	case tryon.KindPreparation:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}

func tooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}

func writeRaw(w http.ResponseWriter, status int, payload []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}

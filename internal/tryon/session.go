package tryon

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"wardrobe/internal/capture"
	"wardrobe/internal/extract"
	"wardrobe/internal/garments"
	"wardrobe/internal/imageref"
	"wardrobe/internal/infra"
	"wardrobe/internal/metrics"
	"wardrobe/internal/normalize"
)

// ErrNoCamera is returned by CapturePhoto when no device is active.
var ErrNoCamera = errors.New("tryon: camera is not active")

// Normalizer prepares image references as base64 payloads.
type Normalizer interface {
	Payload(ctx context.Context, raw string) string
	PayloadAll(ctx context.Context, refs []string) []string
}

// Attempt summarizes a finished submission for telemetry.
type Attempt struct {
	ID           string
	GarmentCount int
	State        State
	Kind         ErrorKind
	Duration     time.Duration
}

// Recorder persists attempt telemetry. Failures are logged and ignored.
type Recorder interface {
	RecordAttempt(ctx context.Context, a Attempt) error
}

// Options configures a Session.
type Options struct {
	Client     Client
	Normalizer Normalizer
	Garments   *garments.Set
	Resize     normalize.ResizeOptions
	// Timeout bounds one attempt. Zero leaves the attempt unbounded.
	Timeout  time.Duration
	Recorder Recorder
	Logger   *infra.Logger
	// OnResult is called with every terminal result of a live session.
	OnResult func(Result)
}

// Session owns the state of one try-on screen: the subject photo, the garment
// set, the capture device and the single in-flight attempt.
type Session struct {
	client     Client
	normalizer Normalizer
	garments   *garments.Set
	resize     normalize.ResizeOptions
	timeout    time.Duration
	recorder   Recorder
	logger     *infra.Logger
	onResult   func(Result)

	mu     sync.Mutex
	state  State
	photo  string
	result Result
	camera capture.Device
	closed bool
}

// NewSession constructs a Session. Client and Normalizer are required.
func NewSession(opts Options) (*Session, error) {
	if opts.Client == nil {
		return nil, errors.New("tryon: client is required")
	}
	if opts.Normalizer == nil {
		return nil, errors.New("tryon: normalizer is required")
	}
	set := opts.Garments
	if set == nil {
		set = garments.New()
	}
	logger := opts.Logger
	if logger == nil {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Session{
		client:     opts.Client,
		normalizer: opts.Normalizer,
		garments:   set,
		resize:     opts.Resize,
		timeout:    opts.Timeout,
		recorder:   opts.Recorder,
		logger:     logger,
		onResult:   opts.OnResult,
	}, nil
}

// Garments returns the session's garment set.
func (s *Session) Garments() *garments.Set {
	return s.garments
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Result returns the latest terminal result, if any.
func (s *Session) Result() Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Photo returns the current subject photo reference.
func (s *Session) Photo() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.photo
}

// SetPhoto uses raw (a data URI or URL) as the subject photo.
func (s *Session) SetPhoto(raw string) {
	s.mu.Lock()
	s.photo = raw
	s.mu.Unlock()
}

// UploadPhoto bounds an uploaded image and stores it as the subject photo.
func (s *Session) UploadPhoto(data []byte) error {
	resized, err := normalize.Resize(data, s.resize)
	if err != nil {
		return err
	}
	s.SetPhoto(imageref.FromBytes(resized, "image/jpeg").String())
	return nil
}

// StartCamera hands the device to the session, releasing any previous one.
func (s *Session) StartCamera(dev capture.Device) {
	s.mu.Lock()
	prev := s.camera
	s.camera = dev
	closed := s.closed
	if closed {
		s.camera = nil
	}
	s.mu.Unlock()
	if prev != nil && prev != dev {
		prev.Stop()
	}
	if closed && dev != nil {
		dev.Stop()
	}
}

// StopCamera releases the active device, if any.
func (s *Session) StopCamera() {
	s.mu.Lock()
	dev := s.camera
	s.camera = nil
	s.mu.Unlock()
	if dev != nil {
		dev.Stop()
	}
}

// CameraActive reports whether a device is held.
func (s *Session) CameraActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.camera != nil
}

// CapturePhoto grabs one frame as the subject photo. The device is released
// afterwards whether or not the capture worked.
func (s *Session) CapturePhoto(ctx context.Context) error {
	s.mu.Lock()
	dev := s.camera
	s.mu.Unlock()
	if dev == nil {
		return ErrNoCamera
	}
	defer s.StopCamera()

	data, _, err := dev.Frame(ctx)
	if err != nil {
		return err
	}
	return s.UploadPhoto(data)
}

// Reset clears the photo and the last result and releases the camera. An
// attempt in flight keeps running.
func (s *Session) Reset() {
	s.StopCamera()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.photo = ""
	s.result = Result{}
	if !s.state.InFlight() {
		s.state = StateIdle
	}
}

// Close ends the session. The camera is released and any attempt that
// resolves afterwards is discarded.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.StopCamera()
}

// Submit runs one try-on attempt. It reports false, without doing anything,
// when an attempt is already in flight or the session is closed.
func (s *Session) Submit(ctx context.Context) (Result, bool) {
	s.mu.Lock()
	if s.closed || s.state.InFlight() {
		s.mu.Unlock()
		return Result{}, false
	}
	photo := s.photo
	refs := s.garments.Items()

	if v := validate(photo, refs); v != nil {
		s.mu.Unlock()
		res := Result{State: StateFailed, Err: v}
		s.logger.Info().Str("reason", v.Message).Msg("tryon: submission rejected")
		metrics.RecordTryOn(res.State.String(), v.Kind.String(), 0)
		s.notify(res)
		return res, true
	}

	attemptID := uuid.NewString()
	s.state = StatePreparing
	s.mu.Unlock()

	start := time.Now()
	log := s.logger.With().Str("attempt_id", attemptID).Int("garments", len(refs)).Logger()
	log.Debug().Msg("tryon: preparing")

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	res := s.run(ctx, &log, photo, refs)
	res.AttemptID = attemptID
	elapsed := time.Since(start)

	s.mu.Lock()
	if s.closed {
		s.state = StateIdle
		s.mu.Unlock()
		log.Debug().Str("state", res.State.String()).Msg("tryon: session closed, result discarded")
		return res, true
	}
	s.state = res.State
	s.result = res
	s.mu.Unlock()

	kind := ""
	if res.Err != nil {
		kind = res.Err.Kind.String()
	}
	var ev *zerolog.Event
	if res.State == StateFailed {
		ev = log.Warn().Str("kind", kind).Str("error", res.Err.Message)
	} else {
		ev = log.Info()
	}
	ev.Str("state", res.State.String()).Dur("elapsed", elapsed).Msg("tryon: attempt finished")
	metrics.RecordTryOn(res.State.String(), kind, elapsed.Seconds())
	s.record(ctx, Attempt{ID: attemptID, GarmentCount: len(refs), State: res.State, Kind: kindOf(res), Duration: elapsed})
	s.notify(res)
	return res, true
}

func (s *Session) run(ctx context.Context, log *zerolog.Logger, photo string, refs []string) Result {
	var (
		subject  string
		payloads []string
		g        errgroup.Group
	)
	g.Go(func() error {
		subject = s.normalizer.Payload(ctx, photo)
		return nil
	})
	g.Go(func() error {
		payloads = s.normalizer.PayloadAll(ctx, refs)
		return nil
	})
	_ = g.Wait()

	req := Request{SubjectImage: subject, GarmentImages: payloads}
	if !req.Valid() {
		return Result{State: StateFailed, Err: newError(KindPreparation, MsgCouldNotPrepare)}
	}

	s.setState(StateSubmitting)
	log.Debug().Int("payloads", len(payloads)).Msg("tryon: submitting")

	resp, err := s.client.TryOn(ctx, req)
	if err != nil {
		return Result{State: StateFailed, Err: newError(KindNetwork, err.Error())}
	}
	if !resp.OK() {
		e := newError(KindUpstream, upstreamMessage(resp))
		e.Status = resp.Status
		return Result{State: StateFailed, Err: e}
	}
	uri, ok := extract.Image(resp.Body)
	if !ok {
		return Result{State: StateEmpty}
	}
	return Result{State: StateSucceeded, ImageURI: uri}
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func (s *Session) notify(res Result) {
	if s.onResult != nil {
		s.onResult(res)
	}
}

func (s *Session) record(ctx context.Context, a Attempt) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.RecordAttempt(context.WithoutCancel(ctx), a); err != nil {
		s.logger.Warn().Err(err).Str("attempt_id", a.ID).Msg("tryon: record attempt failed")
	}
}

func validate(photo string, refs []string) *Error {
	if photo == "" {
		return newError(KindValidation, MsgNoPhoto)
	}
	if len(refs) == 0 {
		return newError(KindValidation, MsgNoGarments)
	}
	return nil
}

func kindOf(res Result) ErrorKind {
	if res.Err == nil {
		return 0
	}
	return res.Err.Kind
}

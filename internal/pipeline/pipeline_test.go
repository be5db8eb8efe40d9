package pipeline

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adhuhaam/laraos-sub001/internal/backend"
	"github.com/adhuhaam/laraos-sub001/pkg/models"
)

// fakeAdapter scripts one backend for chain tests and counts its calls.
type fakeAdapter struct {
	name  string
	text  string
	conf  float64
	fail  bool
	calls int
}

func (f *fakeAdapter) Name() string { return f.name }

func (f *fakeAdapter) Recognize(ctx context.Context, image []byte) backend.Result {
	f.calls++
	if f.fail {
		return backend.Result{BackendName: f.name, FailureReason: "scripted failure"}
	}
	return backend.Result{
		BackendName: f.name,
		RawText:     f.text,
		Confidence:  f.conf,
		Succeeded:   true,
	}
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			v := uint8(x * 8)
			img.SetNRGBA(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, imaging.PNG))
	return buf.Bytes()
}

const usableText = "Name: JOHN MICHAEL SMITH\nPassport No: 123456789\nDate of Birth: 15/03/1985"

func newTestService(opts Options, adapters ...*fakeAdapter) *Service {
	var as []backend.Adapter
	var ds []backend.Descriptor
	for _, a := range adapters {
		as = append(as, a)
		ds = append(ds, backend.Descriptor{Name: a.name, Available: true})
	}
	return NewServiceWithAdapters(as, ds, opts)
}

func TestExtractSuccess(t *testing.T) {
	a := &fakeAdapter{name: "one", text: usableText, conf: 80}
	svc := newTestService(Options{}, a)

	outcome, err := svc.Extract(context.Background(), testPNG(t))
	require.NoError(t, err)
	require.NotNil(t, outcome)

	assert.Equal(t, StatusSuccess, outcome.Status)
	assert.NotEmpty(t, outcome.RequestID)
	assert.Equal(t, "123456789", outcome.Record.PassportNumber)
	assert.Equal(t, "JOHN MICHAEL SMITH", outcome.Record.FullName)
	assert.False(t, outcome.MRZFound)
}

func TestSuccessCapStopsChainEarly(t *testing.T) {
	adapters := []*fakeAdapter{
		{name: "a", text: usableText, conf: 50},
		{name: "b", text: usableText, conf: 60},
		{name: "c", text: usableText, conf: 70},
		{name: "d", text: usableText, conf: 99},
		{name: "e", text: usableText, conf: 99},
	}
	svc := newTestService(Options{MaxSuccesses: 3}, adapters...)

	outcome, err := svc.Extract(context.Background(), testPNG(t))
	require.NoError(t, err)

	// Each succeeding backend is called once (first strategy wins), and the
	// chain stops after the third success.
	assert.Equal(t, 1, adapters[0].calls)
	assert.Equal(t, 1, adapters[1].calls)
	assert.Equal(t, 1, adapters[2].calls)
	assert.Zero(t, adapters[3].calls)
	assert.Zero(t, adapters[4].calls)
	assert.Len(t, outcome.Results, 3)
}

func TestFailedBackendFallsThrough(t *testing.T) {
	bad := &fakeAdapter{name: "bad", fail: true}
	good := &fakeAdapter{name: "good", text: usableText, conf: 75}
	svc := newTestService(Options{MaxSuccesses: 1}, bad, good)

	outcome, err := svc.Extract(context.Background(), testPNG(t))
	require.NoError(t, err)

	// The failing backend burns every strategy before the chain moves on.
	assert.Equal(t, 4, bad.calls)
	assert.Equal(t, 1, good.calls)
	assert.Equal(t, StatusSuccess, outcome.Status)
	assert.Len(t, outcome.Results, 5)
}

func TestBestConfidenceWinsOverPriority(t *testing.T) {
	low := &fakeAdapter{name: "low", text: "Passport No: 111111111\nName: ANNA MARIA LEE", conf: 40}
	high := &fakeAdapter{name: "high", text: "Passport No: 222222222\nName: ANNA MARIA LEE", conf: 95}
	svc := newTestService(Options{MaxSuccesses: 2}, low, high)

	outcome, err := svc.Extract(context.Background(), testPNG(t))
	require.NoError(t, err)

	assert.Equal(t, "222222222", outcome.Record.PassportNumber)
}

func TestConfidenceTieKeepsPriorityOrder(t *testing.T) {
	first := &fakeAdapter{name: "first", text: "Passport No: 111111111\nName: ANNA MARIA LEE", conf: 80}
	second := &fakeAdapter{name: "second", text: "Passport No: 222222222\nName: ANNA MARIA LEE", conf: 80}
	svc := newTestService(Options{MaxSuccesses: 2}, first, second)

	outcome, err := svc.Extract(context.Background(), testPNG(t))
	require.NoError(t, err)

	assert.Equal(t, "111111111", outcome.Record.PassportNumber)
}

func TestShortTextIsNotUsable(t *testing.T) {
	short := &fakeAdapter{name: "short", text: "abc", conf: 99}
	good := &fakeAdapter{name: "good", text: usableText, conf: 50}
	svc := newTestService(Options{MaxSuccesses: 1, MinTextLength: 20}, short, good)

	outcome, err := svc.Extract(context.Background(), testPNG(t))
	require.NoError(t, err)

	// The short result succeeds at the provider level but never counts, so
	// every strategy of the first backend is exhausted.
	assert.Equal(t, 4, short.calls)
	assert.Equal(t, "123456789", outcome.Record.PassportNumber)
}

func TestAllBackendsFailed(t *testing.T) {
	a := &fakeAdapter{name: "a", fail: true}
	b := &fakeAdapter{name: "b", fail: true}
	svc := newTestService(Options{}, a, b)

	outcome, err := svc.Extract(context.Background(), testPNG(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAllBackendsFailed)

	// Diagnostics still come back so the caller can show what was tried.
	require.NotNil(t, outcome)
	assert.Equal(t, StatusAllFailed, outcome.Status)
	assert.Len(t, outcome.Results, 8)
	for _, r := range outcome.Results {
		assert.False(t, r.Succeeded)
		assert.NotEmpty(t, r.FailureReason)
	}
}

func TestNoBackendsConfigured(t *testing.T) {
	svc := NewServiceWithAdapters(nil, nil, Options{})
	outcome, err := svc.Extract(context.Background(), testPNG(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAllBackendsFailed)
	require.NotNil(t, outcome)
	assert.Equal(t, StatusAllFailed, outcome.Status)
}

func TestOversizedImageRejectedBeforeAnyAttempt(t *testing.T) {
	a := &fakeAdapter{name: "a", text: usableText, conf: 80}
	svc := newTestService(Options{MaxImageBytes: 64}, a)

	outcome, err := svc.Extract(context.Background(), testPNG(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorIs(t, err, ErrImageTooLarge)
	assert.Nil(t, outcome)
	assert.Zero(t, a.calls)
}

func TestNonImageRejectedBeforeAnyAttempt(t *testing.T) {
	a := &fakeAdapter{name: "a", text: usableText, conf: 80}
	svc := newTestService(Options{}, a)

	outcome, err := svc.Extract(context.Background(), []byte("%PDF-1.4 not a raster image, padded to look real"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorIs(t, err, ErrNotAnImage)
	assert.Nil(t, outcome)
	assert.Zero(t, a.calls)
}

func TestCorruptImagePassingTypeGateIsRejected(t *testing.T) {
	// Valid PNG magic bytes over a garbage body: the mimetype gate lets it
	// through, the decoder cannot. Still invalid input, still zero backend
	// attempts.
	a := &fakeAdapter{name: "a", text: usableText, conf: 80}
	svc := newTestService(Options{}, a)

	payload := append([]byte("\x89PNG\r\n\x1a\n"), []byte("definitely not a png body")...)
	outcome, err := svc.Extract(context.Background(), payload)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorIs(t, err, ErrNotAnImage)
	assert.Nil(t, outcome)
	assert.Zero(t, a.calls)
}

func TestEmptyInputRejected(t *testing.T) {
	svc := newTestService(Options{}, &fakeAdapter{name: "a", text: usableText})
	_, err := svc.Extract(context.Background(), nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestMRZTextYieldsMRZRecord(t *testing.T) {
	mrzText := "P<USASMITH<<JOHN<MICHAEL<<<<<<<<<<<<<<<<<<<\n123456789<0USA8503159M3001011<<<<<<<<<<<<<04"
	a := &fakeAdapter{name: "a", text: mrzText, conf: 85}
	svc := newTestService(Options{MaxSuccesses: 1}, a)

	outcome, err := svc.Extract(context.Background(), testPNG(t))
	require.NoError(t, err)

	assert.True(t, outcome.MRZFound)
	assert.Equal(t, StatusSuccess, outcome.Status)
	assert.Equal(t, "123456789", outcome.Record.PassportNumber)
	assert.Equal(t, "2030-01-01", outcome.Record.ExpiryDate)
}

func TestPartialStatus(t *testing.T) {
	// A nationality alone is not enough for success.
	a := &fakeAdapter{name: "a", text: "Nationality: MALDIVES\nand some padding text", conf: 70}
	svc := newTestService(Options{MaxSuccesses: 1}, a)

	outcome, err := svc.Extract(context.Background(), testPNG(t))
	require.NoError(t, err)

	assert.Equal(t, StatusPartial, outcome.Status)
	assert.Equal(t, "Maldivian", outcome.Record.Nationality)
}

func TestCancelledContextStopsChain(t *testing.T) {
	a := &fakeAdapter{name: "a", text: usableText, conf: 80}
	svc := newTestService(Options{}, a)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcome, err := svc.Extract(ctx, testPNG(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAllBackendsFailed)
	require.NotNil(t, outcome)
	assert.Zero(t, a.calls)
}

// blockingAdapter never returns until its call context is done.
type blockingAdapter struct {
	name  string
	calls int
}

func (b *blockingAdapter) Name() string { return b.name }

func (b *blockingAdapter) Recognize(ctx context.Context, image []byte) backend.Result {
	b.calls++
	<-ctx.Done()
	return backend.Result{BackendName: b.name, FailureReason: ctx.Err().Error()}
}

func TestPerCallTimeoutUnblocksTheChain(t *testing.T) {
	slow := &blockingAdapter{name: "slow"}
	good := &fakeAdapter{name: "good", text: usableText, conf: 60}
	svc := NewServiceWithAdapters(
		[]backend.Adapter{slow, good},
		[]backend.Descriptor{{Name: "slow", Available: true}, {Name: "good", Available: true}},
		Options{MaxSuccesses: 1, PerCallTimeout: 30 * time.Millisecond},
	)

	outcome, err := svc.Extract(context.Background(), testPNG(t))
	require.NoError(t, err)

	// Each strategy attempt against the stalled backend is cut off by the
	// per-call timeout and the chain moves on to the healthy one.
	assert.Equal(t, 4, slow.calls)
	assert.Equal(t, 1, good.calls)
	assert.Equal(t, StatusSuccess, outcome.Status)
	require.Len(t, outcome.Results, 5)
	for _, r := range outcome.Results[:4] {
		assert.False(t, r.Succeeded)
		assert.Contains(t, r.FailureReason, "deadline")
	}
}

func TestProgressIsEmittedPerStep(t *testing.T) {
	a := &fakeAdapter{name: "a", fail: true}
	b := &fakeAdapter{name: "b", text: usableText, conf: 60}

	var updates []Progress
	svc := newTestService(Options{OnProgress: func(p Progress) { updates = append(updates, p) }}, a, b)

	_, err := svc.Extract(context.Background(), testPNG(t))
	require.NoError(t, err)

	// Four strategies on the failing backend, one on the succeeding one.
	require.Len(t, updates, 5)
	assert.Equal(t, "a", updates[0].Backend)
	assert.Equal(t, "b", updates[4].Backend)
	for i := 1; i < len(updates); i++ {
		assert.GreaterOrEqual(t, updates[i].Percent, updates[i-1].Percent)
	}
	assert.LessOrEqual(t, updates[len(updates)-1].Percent, 100)
}

func TestStatusForRecordShapes(t *testing.T) {
	assert.Equal(t, StatusAllFailed, statusFor(&models.ExtractedRecord{}))
	assert.Equal(t, StatusPartial, statusFor(&models.ExtractedRecord{Nationality: "Indian"}))
	assert.Equal(t, StatusSuccess, statusFor(&models.ExtractedRecord{PassportNumber: "123456789", FullName: "JOHN SMITH"}))
}

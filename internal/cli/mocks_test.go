package cli

import (
	"context"
	"sync"

	"github.com/alnah/go-voiceset/internal/catalog"
	"github.com/alnah/go-voiceset/internal/config"
	"github.com/alnah/go-voiceset/internal/convert"
	"github.com/alnah/go-voiceset/internal/interval"
	"github.com/alnah/go-voiceset/internal/sanitize"
	"github.com/alnah/go-voiceset/internal/segment"
	"github.com/alnah/go-voiceset/internal/transcribe"
)

// ---------------------------------------------------------------------------
// Mock FFmpegResolver
// ---------------------------------------------------------------------------

type mockFFmpegResolver struct {
	ResolveFunc      func(ctx context.Context) (string, error)
	CheckVersionFunc func(ctx context.Context, ffmpegPath string)

	mu           sync.Mutex
	resolveCalls int
}

func (m *mockFFmpegResolver) Resolve(ctx context.Context) (string, error) {
	m.mu.Lock()
	m.resolveCalls++
	m.mu.Unlock()

	if m.ResolveFunc != nil {
		return m.ResolveFunc(ctx)
	}
	return "/usr/bin/ffmpeg", nil
}

func (m *mockFFmpegResolver) CheckVersion(ctx context.Context, ffmpegPath string) {
	if m.CheckVersionFunc != nil {
		m.CheckVersionFunc(ctx, ffmpegPath)
	}
}

func (m *mockFFmpegResolver) ResolveCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resolveCalls
}

// ---------------------------------------------------------------------------
// Mock ConfigLoader
// ---------------------------------------------------------------------------

type mockConfigLoader struct {
	LoadFunc func() (config.Config, error)

	mu        sync.Mutex
	loadCalls int
}

func (m *mockConfigLoader) Load() (config.Config, error) {
	m.mu.Lock()
	m.loadCalls++
	m.mu.Unlock()

	if m.LoadFunc != nil {
		return m.LoadFunc()
	}
	return config.Config{}, nil
}

func (m *mockConfigLoader) LoadCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadCalls
}

// ---------------------------------------------------------------------------
// Mock DetectorFactory + Detector
// ---------------------------------------------------------------------------

type mockDetectorFactory struct {
	NewDetectorFunc func(ffmpegPath string, noiseDB float64) (segment.Detector, error)

	mockDetector *mockDetector

	mu               sync.Mutex
	newDetectorCalls []float64 // noise floors passed
}

func (m *mockDetectorFactory) NewDetector(ffmpegPath string, noiseDB float64) (segment.Detector, error) {
	m.mu.Lock()
	m.newDetectorCalls = append(m.newDetectorCalls, noiseDB)
	m.mu.Unlock()

	if m.NewDetectorFunc != nil {
		return m.NewDetectorFunc(ffmpegPath, noiseDB)
	}
	if m.mockDetector != nil {
		return m.mockDetector, nil
	}
	return &mockDetector{}, nil
}

func (m *mockDetectorFactory) NewDetectorCalls() []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]float64(nil), m.newDetectorCalls...)
}

type mockDetector struct {
	DetectFunc        func(ctx context.Context, path string, minSilence float64) ([]interval.Interval, error)
	ProbeDurationFunc func(ctx context.Context, path string) (float64, error)
}

func (m *mockDetector) Detect(ctx context.Context, path string, minSilence float64) ([]interval.Interval, error) {
	if m.DetectFunc != nil {
		return m.DetectFunc(ctx, path, minSilence)
	}
	return []interval.Interval{{Start: 1, End: 1.5}}, nil
}

func (m *mockDetector) ProbeDuration(ctx context.Context, path string) (float64, error) {
	if m.ProbeDurationFunc != nil {
		return m.ProbeDurationFunc(ctx, path)
	}
	return 10.0, nil
}

// ---------------------------------------------------------------------------
// Mock SplitterFactory + Splitter
// ---------------------------------------------------------------------------

type mockSplitterFactory struct {
	NewSplitterFunc func(ffmpegPath string, detector segment.Detector, cfg segment.Config, opts ...segment.Option) (Splitter, error)

	mockSplitter *mockSplitter

	mu               sync.Mutex
	newSplitterCalls []segment.Config
}

func (m *mockSplitterFactory) NewSplitter(ffmpegPath string, detector segment.Detector, cfg segment.Config, opts ...segment.Option) (Splitter, error) {
	m.mu.Lock()
	m.newSplitterCalls = append(m.newSplitterCalls, cfg)
	m.mu.Unlock()

	if m.NewSplitterFunc != nil {
		return m.NewSplitterFunc(ffmpegPath, detector, cfg, opts...)
	}
	if m.mockSplitter != nil {
		return m.mockSplitter, nil
	}
	return &mockSplitter{}, nil
}

func (m *mockSplitterFactory) NewSplitterCalls() []segment.Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]segment.Config(nil), m.newSplitterCalls...)
}

type mockSplitter struct {
	SplitFunc func(ctx context.Context, trackPath string) ([]segment.Clip, error)

	mu         sync.Mutex
	splitCalls []string
}

func (m *mockSplitter) Split(ctx context.Context, trackPath string) ([]segment.Clip, error) {
	m.mu.Lock()
	m.splitCalls = append(m.splitCalls, trackPath)
	m.mu.Unlock()

	if m.SplitFunc != nil {
		return m.SplitFunc(ctx, trackPath)
	}
	return []segment.Clip{{Path: "clip_000001.wav", Index: 1, Start: 0, End: 2}}, nil
}

func (m *mockSplitter) SplitCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.splitCalls...)
}

// ---------------------------------------------------------------------------
// Mock TranscriberFactory + Transcriber
// ---------------------------------------------------------------------------

type mockTranscriberFactory struct {
	NewTranscriberFunc func(apiKey, model string) transcribe.Transcriber

	mockTranscriber *mockTranscriber

	mu                  sync.Mutex
	newTranscriberCalls []string // models passed
}

func (m *mockTranscriberFactory) NewTranscriber(apiKey, model string) transcribe.Transcriber {
	m.mu.Lock()
	m.newTranscriberCalls = append(m.newTranscriberCalls, model)
	m.mu.Unlock()

	if m.NewTranscriberFunc != nil {
		return m.NewTranscriberFunc(apiKey, model)
	}
	if m.mockTranscriber != nil {
		return m.mockTranscriber
	}
	return &mockTranscriber{}
}

func (m *mockTranscriberFactory) NewTranscriberCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.newTranscriberCalls...)
}

type mockTranscriber struct {
	TranscribeFunc func(ctx context.Context, audioPath string, opts transcribe.Options) (transcribe.Result, error)

	mu              sync.Mutex
	transcribeCalls []string
}

func (m *mockTranscriber) Transcribe(ctx context.Context, audioPath string, opts transcribe.Options) (transcribe.Result, error) {
	m.mu.Lock()
	m.transcribeCalls = append(m.transcribeCalls, audioPath)
	m.mu.Unlock()

	if m.TranscribeFunc != nil {
		return m.TranscribeFunc(ctx, audioPath, opts)
	}
	return transcribe.Result{
		Text:     "hello world",
		Segments: []catalog.Segment{{Text: "hello world", Start: 0, End: 1.5}},
	}, nil
}

func (m *mockTranscriber) TranscribeCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.transcribeCalls...)
}

// ---------------------------------------------------------------------------
// Mock ConverterFactory + Converter
// ---------------------------------------------------------------------------

type mockConverterFactory struct {
	NewConverterFunc func(ffmpegPath string, opts ...convert.Option) (Converter, error)

	mockConverter *mockConverter
}

func (m *mockConverterFactory) NewConverter(ffmpegPath string, opts ...convert.Option) (Converter, error) {
	if m.NewConverterFunc != nil {
		return m.NewConverterFunc(ffmpegPath, opts...)
	}
	if m.mockConverter != nil {
		return m.mockConverter, nil
	}
	return &mockConverter{}, nil
}

type mockConverter struct {
	FolderFunc func(ctx context.Context, in, out, format string) (int, error)

	mu          sync.Mutex
	folderCalls []convertCall
}

type convertCall struct {
	In, Out, Format string
}

func (m *mockConverter) Folder(ctx context.Context, in, out, format string) (int, error) {
	m.mu.Lock()
	m.folderCalls = append(m.folderCalls, convertCall{In: in, Out: out, Format: format})
	m.mu.Unlock()

	if m.FolderFunc != nil {
		return m.FolderFunc(ctx, in, out, format)
	}
	return 3, nil
}

func (m *mockConverter) FolderCalls() []convertCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]convertCall(nil), m.folderCalls...)
}

// ---------------------------------------------------------------------------
// Mock ClassifierFactory + Classifier
// ---------------------------------------------------------------------------

type mockClassifierFactory struct {
	NewClassifierFunc func(prober sanitize.DurationProber, opts ...sanitize.ClassifierOption) (Classifier, error)

	mockClassifier *mockClassifier
}

func (m *mockClassifierFactory) NewClassifier(prober sanitize.DurationProber, opts ...sanitize.ClassifierOption) (Classifier, error) {
	if m.NewClassifierFunc != nil {
		return m.NewClassifierFunc(prober, opts...)
	}
	if m.mockClassifier != nil {
		return m.mockClassifier, nil
	}
	return &mockClassifier{}, nil
}

type mockClassifier struct {
	ClassifyFunc func(ctx context.Context, folder string) (sanitize.Report, error)

	mu            sync.Mutex
	classifyCalls []string
}

func (m *mockClassifier) Classify(ctx context.Context, folder string) (sanitize.Report, error) {
	m.mu.Lock()
	m.classifyCalls = append(m.classifyCalls, folder)
	m.mu.Unlock()

	if m.ClassifyFunc != nil {
		return m.ClassifyFunc(ctx, folder)
	}
	return sanitize.Report{Usable: 2, NotUsable: 1}, nil
}

func (m *mockClassifier) ClassifyCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.classifyCalls...)
}

// Compile-time interface verification.
var (
	_ FFmpegResolver         = (*mockFFmpegResolver)(nil)
	_ ConfigLoader           = (*mockConfigLoader)(nil)
	_ DetectorFactory        = (*mockDetectorFactory)(nil)
	_ segment.Detector       = (*mockDetector)(nil)
	_ SplitterFactory        = (*mockSplitterFactory)(nil)
	_ Splitter               = (*mockSplitter)(nil)
	_ TranscriberFactory     = (*mockTranscriberFactory)(nil)
	_ transcribe.Transcriber = (*mockTranscriber)(nil)
	_ ConverterFactory       = (*mockConverterFactory)(nil)
	_ Converter              = (*mockConverter)(nil)
	_ ClassifierFactory      = (*mockClassifierFactory)(nil)
	_ Classifier             = (*mockClassifier)(nil)
)

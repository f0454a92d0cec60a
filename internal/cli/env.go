package cli

import (
	"context"
	"io"
	"os"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/alnah/go-voiceset/internal/config"
	"github.com/alnah/go-voiceset/internal/convert"
	"github.com/alnah/go-voiceset/internal/ffmpeg"
	"github.com/alnah/go-voiceset/internal/sanitize"
	"github.com/alnah/go-voiceset/internal/segment"
	"github.com/alnah/go-voiceset/internal/silence"
	"github.com/alnah/go-voiceset/internal/transcribe"
)

// EnvOpenAIAPIKey is the environment variable holding the OpenAI key.
const EnvOpenAIAPIKey = "OPENAI_API_KEY"

// Env holds injectable dependencies for CLI commands.
// This is the central injection point for testing CLI commands in isolation.
//
// All fields have sensible defaults via DefaultEnv(). Tests can override
// specific fields using the With* options or by creating a custom Env.
//
// Env must not be nil when passed to command functions. Use DefaultEnv()
// or NewEnv() to create a valid instance.
type Env struct {
	// I/O and environment
	Stdout io.Writer
	Stderr io.Writer
	Stdin  io.Reader
	Getenv func(string) string
	Now    func() time.Time

	// Factories for domain objects
	FFmpegResolver     FFmpegResolver
	ConfigLoader       ConfigLoader
	DetectorFactory    DetectorFactory
	SplitterFactory    SplitterFactory
	TranscriberFactory TranscriberFactory
	ConverterFactory   ConverterFactory
	ClassifierFactory  ClassifierFactory
}

// FFmpegResolver resolves the path to the FFmpeg binary.
type FFmpegResolver interface {
	Resolve(ctx context.Context) (string, error)
	CheckVersion(ctx context.Context, ffmpegPath string)
}

// ConfigLoader loads and provides access to configuration.
type ConfigLoader interface {
	Load() (config.Config, error)
}

// DetectorFactory creates silence detectors bound to an ffmpeg binary.
type DetectorFactory interface {
	NewDetector(ffmpegPath string, noiseDB float64) (segment.Detector, error)
}

// Splitter runs one track through the segmentation pipeline.
type Splitter interface {
	Split(ctx context.Context, trackPath string) ([]segment.Clip, error)
}

// SplitterFactory creates splitters.
type SplitterFactory interface {
	NewSplitter(ffmpegPath string, detector segment.Detector, cfg segment.Config, opts ...segment.Option) (Splitter, error)
}

// TranscriberFactory creates transcribers for audio-to-text conversion.
type TranscriberFactory interface {
	NewTranscriber(apiKey, model string) transcribe.Transcriber
}

// Converter re-encodes a folder of clips.
type Converter interface {
	Folder(ctx context.Context, in, out, format string) (int, error)
}

// ConverterFactory creates converters bound to an ffmpeg binary.
type ConverterFactory interface {
	NewConverter(ffmpegPath string, opts ...convert.Option) (Converter, error)
}

// Classifier buckets clips by duration.
type Classifier interface {
	Classify(ctx context.Context, folder string) (sanitize.Report, error)
}

// ClassifierFactory creates classifiers around a duration prober.
type ClassifierFactory interface {
	NewClassifier(prober sanitize.DurationProber, opts ...sanitize.ClassifierOption) (Classifier, error)
}

// EnvOption configures an Env.
type EnvOption func(*Env)

// WithStdout sets the stdout writer.
func WithStdout(w io.Writer) EnvOption {
	return func(e *Env) {
		e.Stdout = w
	}
}

// WithStderr sets the stderr writer.
func WithStderr(w io.Writer) EnvOption {
	return func(e *Env) {
		e.Stderr = w
	}
}

// WithStdin sets the input reader.
func WithStdin(r io.Reader) EnvOption {
	return func(e *Env) {
		e.Stdin = r
	}
}

// WithGetenv sets the environment variable getter.
func WithGetenv(fn func(string) string) EnvOption {
	return func(e *Env) {
		e.Getenv = fn
	}
}

// WithNow sets the time provider.
func WithNow(fn func() time.Time) EnvOption {
	return func(e *Env) {
		e.Now = fn
	}
}

// WithFFmpegResolver sets the FFmpeg resolver.
func WithFFmpegResolver(r FFmpegResolver) EnvOption {
	return func(e *Env) {
		e.FFmpegResolver = r
	}
}

// WithConfigLoader sets the config loader.
func WithConfigLoader(l ConfigLoader) EnvOption {
	return func(e *Env) {
		e.ConfigLoader = l
	}
}

// WithDetectorFactory sets the silence detector factory.
func WithDetectorFactory(f DetectorFactory) EnvOption {
	return func(e *Env) {
		e.DetectorFactory = f
	}
}

// WithSplitterFactory sets the splitter factory.
func WithSplitterFactory(f SplitterFactory) EnvOption {
	return func(e *Env) {
		e.SplitterFactory = f
	}
}

// WithTranscriberFactory sets the transcriber factory.
func WithTranscriberFactory(f TranscriberFactory) EnvOption {
	return func(e *Env) {
		e.TranscriberFactory = f
	}
}

// WithConverterFactory sets the converter factory.
func WithConverterFactory(f ConverterFactory) EnvOption {
	return func(e *Env) {
		e.ConverterFactory = f
	}
}

// WithClassifierFactory sets the classifier factory.
func WithClassifierFactory(f ClassifierFactory) EnvOption {
	return func(e *Env) {
		e.ClassifierFactory = f
	}
}

// DefaultEnv returns an Env with production defaults.
func DefaultEnv() *Env {
	return &Env{
		Stdout:             os.Stdout,
		Stderr:             os.Stderr,
		Stdin:              os.Stdin,
		Getenv:             os.Getenv,
		Now:                time.Now,
		FFmpegResolver:     &defaultFFmpegResolver{},
		ConfigLoader:       &defaultConfigLoader{},
		DetectorFactory:    &defaultDetectorFactory{},
		SplitterFactory:    &defaultSplitterFactory{},
		TranscriberFactory: &defaultTranscriberFactory{},
		ConverterFactory:   &defaultConverterFactory{},
		ClassifierFactory:  &defaultClassifierFactory{},
	}
}

// NewEnv creates an Env with the given options applied to defaults.
func NewEnv(opts ...EnvOption) *Env {
	env := DefaultEnv()
	for _, opt := range opts {
		opt(env)
	}
	return env
}

// ---------------------------------------------------------------------------
// Default implementations - delegate to real packages
// ---------------------------------------------------------------------------

// defaultFFmpegResolver implements FFmpegResolver using the ffmpeg package.
type defaultFFmpegResolver struct{}

func (defaultFFmpegResolver) Resolve(ctx context.Context) (string, error) {
	return ffmpeg.Resolve(ctx)
}

func (defaultFFmpegResolver) CheckVersion(ctx context.Context, ffmpegPath string) {
	ffmpeg.CheckVersion(ctx, ffmpegPath)
}

// defaultConfigLoader implements ConfigLoader using the config package.
type defaultConfigLoader struct{}

func (defaultConfigLoader) Load() (config.Config, error) {
	return config.Load()
}

// defaultDetectorFactory implements DetectorFactory using the silence package.
type defaultDetectorFactory struct{}

func (defaultDetectorFactory) NewDetector(ffmpegPath string, noiseDB float64) (segment.Detector, error) {
	return silence.NewFFmpegDetector(ffmpegPath, silence.WithNoiseDB(noiseDB))
}

// defaultSplitterFactory implements SplitterFactory using the segment package.
type defaultSplitterFactory struct{}

func (defaultSplitterFactory) NewSplitter(ffmpegPath string, detector segment.Detector, cfg segment.Config, opts ...segment.Option) (Splitter, error) {
	return segment.NewSplitter(ffmpegPath, detector, cfg, opts...)
}

// defaultTranscriberFactory implements TranscriberFactory using OpenAI.
type defaultTranscriberFactory struct{}

func (defaultTranscriberFactory) NewTranscriber(apiKey, model string) transcribe.Transcriber {
	client := openai.NewClient(apiKey)
	var opts []transcribe.TranscriberOption
	if model != "" {
		opts = append(opts, transcribe.WithModel(model))
	}
	return transcribe.NewOpenAITranscriber(client, opts...)
}

// defaultConverterFactory implements ConverterFactory using the convert package.
type defaultConverterFactory struct{}

func (defaultConverterFactory) NewConverter(ffmpegPath string, opts ...convert.Option) (Converter, error) {
	return convert.NewConverter(ffmpegPath, opts...)
}

// defaultClassifierFactory implements ClassifierFactory using the sanitize package.
type defaultClassifierFactory struct{}

func (defaultClassifierFactory) NewClassifier(prober sanitize.DurationProber, opts ...sanitize.ClassifierOption) (Classifier, error) {
	return sanitize.NewClassifier(prober, opts...)
}

// Compile-time interface verification.
var (
	_ FFmpegResolver     = (*defaultFFmpegResolver)(nil)
	_ ConfigLoader       = (*defaultConfigLoader)(nil)
	_ DetectorFactory    = (*defaultDetectorFactory)(nil)
	_ SplitterFactory    = (*defaultSplitterFactory)(nil)
	_ TranscriberFactory = (*defaultTranscriberFactory)(nil)
	_ ConverterFactory   = (*defaultConverterFactory)(nil)
	_ ClassifierFactory  = (*defaultClassifierFactory)(nil)
)

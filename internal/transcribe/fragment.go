package transcribe

import (
	"context"

	"github.com/alnah/go-voiceset/internal/segment"
)

// FragmentLabeler adapts a Transcriber to the splitter's plain-text
// labeling hook, dropping segment timings it has no use for.
type FragmentLabeler struct {
	Transcriber Transcriber
	Opts        Options
}

var _ segment.Transcriber = (*FragmentLabeler)(nil)

func (f *FragmentLabeler) Transcribe(ctx context.Context, audioPath string) (string, error) {
	res, err := f.Transcriber.Transcribe(ctx, audioPath, f.Opts)
	if err != nil {
		return "", err
	}
	return res.Text, nil
}

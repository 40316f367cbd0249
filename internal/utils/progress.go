package utils

import (
	"io"

	"github.com/schollz/progressbar/v3"
)

// Standard progress bar descriptions
const (
	DescValidating = "Validating"
)

// NewProgressBarTo creates a consistently styled progress bar writing to w.
// A nil w keeps the library default (stdout).
//
// Parameters:
//   - total: Total number of items. Use -1 for unknown totals (indeterminate/spinner mode).
//   - description: Text description to show before the progress bar (e.g., DescValidating).
//
// Example:
//
//	bar := utils.NewProgressBarTo(os.Stderr, len(names), utils.DescValidating)
//	defer bar.Finish()
func NewProgressBarTo(w io.Writer, total int, description string) *progressbar.ProgressBar {
	opts := []progressbar.Option{
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
	}
	if w != nil {
		opts = append(opts, progressbar.OptionSetWriter(w))
	}

	if total < 0 {
		opts = append(opts,
			progressbar.OptionSpinnerType(14),
			progressbar.OptionSetRenderBlankState(true),
		)
	} else {
		opts = append(opts,
			progressbar.OptionShowIts(),
		)
	}

	return progressbar.NewOptions(total, opts...)
}

package summarizer

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/user/clipforge/pkg/pipeline"
)

// MarkdownFormatter formats a Summary as a Markdown document.
type MarkdownFormatter struct {
	translate func(string) string
	version   string
}

// MarkdownOption configures a MarkdownFormatter.
type MarkdownOption func(*MarkdownFormatter)

// WithTranslator sets the function used to translate labels.
func WithTranslator(t func(string) string) MarkdownOption {
	return func(f *MarkdownFormatter) {
		f.translate = t
	}
}

// WithVersion sets the version shown in the header.
func WithVersion(v string) MarkdownOption {
	return func(f *MarkdownFormatter) {
		f.version = v
	}
}

// NewMarkdownFormatter creates a MarkdownFormatter. Labels are English
// unless a translator is given.
func NewMarkdownFormatter(opts ...MarkdownOption) *MarkdownFormatter {
	f := &MarkdownFormatter{
		translate: func(s string) string { return s },
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format implements Formatter.
func (f *MarkdownFormatter) Format(s *Summary) string {
	var sb strings.Builder
	t := f.translate

	fmt.Fprintf(&sb, "# %s\n\n", t("Clip Summary"))
	fmt.Fprintf(&sb, "%s: %s", t("Generated"), s.GeneratedAt.Format(time.RFC3339))
	if f.version != "" {
		fmt.Fprintf(&sb, " (clipforge %s)", f.version)
	}
	sb.WriteString("\n\n")

	f.writeSource(&sb, s)
	if s.Render != nil {
		f.writeRender(&sb, *s.Render)
	}
	if s.Output != nil {
		f.writeOutput(&sb, *s.Output)
	}
	if len(s.Images) > 0 {
		f.writeImages(&sb, s.Images)
	}
	return sb.String()
}

func (f *MarkdownFormatter) table(sb *strings.Builder, title string, rows [][2]string) {
	t := f.translate
	fmt.Fprintf(sb, "## %s\n\n", t(title))
	fmt.Fprintf(sb, "| %s | %s |\n", t("Item"), t("Value"))
	sb.WriteString("|---|---|\n")
	for _, r := range rows {
		fmt.Fprintf(sb, "| %s | %s |\n", t(r[0]), r[1])
	}
	sb.WriteString("\n")
}

func (f *MarkdownFormatter) writeSource(sb *strings.Builder, s *Summary) {
	t := f.translate
	name := s.Source.Name
	if name == "" {
		name = filepath.Base(s.Source.Path)
	}
	rows := [][2]string{{"File", name}}

	if m := s.Metadata; m != nil {
		codec := m.VideoCodec
		if codec == "" {
			codec = t("N/A")
		}
		fps := t("N/A")
		if m.FrameRate > 0 {
			fps = fmt.Sprintf("%.2f fps", m.FrameRate)
		}
		audio := t("No")
		if m.HasAudio {
			audio = t("Yes")
		}
		rows = append(rows,
			[2]string{"Duration", formatDuration(m.Duration)},
			[2]string{"Resolution", fmt.Sprintf("%dx%d", m.Width, m.Height)},
			[2]string{"Rotation", fmt.Sprintf("%d°", m.RotationDegrees)},
			[2]string{"Container", m.Extension},
			[2]string{"Codec", codec},
			[2]string{"Frame Rate", fps},
			[2]string{"Audio", audio},
			[2]string{"Bitrate", f.formatBitrate(m.BitrateBps)},
			[2]string{"File Size", formatBytes(m.FileSizeBytes)},
		)
	}
	f.table(sb, "Source", rows)
}

func (f *MarkdownFormatter) writeRender(sb *strings.Builder, job pipeline.RenderJob) {
	t := f.translate
	start, end := t("Start"), t("End")
	if job.StartTime != nil {
		start = formatDuration(*job.StartTime)
	}
	if job.EndTime != nil {
		end = formatDuration(*job.EndTime)
	}
	audio := t("Disabled")
	if job.EnableAudio {
		audio = t("Enabled")
	}
	rows := [][2]string{
		{"Output Format", string(job.OutputFormat)},
		{"Range", start + " - " + end},
		{"Speed", fmt.Sprintf("%.2fx", job.Speed())},
		{"Audio", audio},
		{"Target Bitrate", f.formatBitrate(job.TargetBitrateBps)},
	}
	if job.FrameRate > 0 {
		rows = append(rows, [2]string{"Frame Rate", fmt.Sprintf("%.2f fps", job.FrameRate)})
	}
	if tr := job.Transform; tr != nil {
		if tr.Crop != nil {
			c := tr.Crop
			rows = append(rows, [2]string{"Crop", fmt.Sprintf("%dx%d+%d+%d", c.Width, c.Height, c.X, c.Y)})
		}
		if tr.RotateTurns != 0 {
			rows = append(rows, [2]string{"Rotation", fmt.Sprintf("%d°", tr.RotateTurns*90)})
		}
		if tr.FlipX || tr.FlipY {
			var axes []string
			if tr.FlipX {
				axes = append(axes, t("Horizontal"))
			}
			if tr.FlipY {
				axes = append(axes, t("Vertical"))
			}
			rows = append(rows, [2]string{"Flip", strings.Join(axes, ", ")})
		}
		if sx, sy := tr.Scale(); sx != 1 || sy != 1 {
			rows = append(rows, [2]string{"Scale", fmt.Sprintf("%.2f x %.2f", sx, sy)})
		}
	}
	if n := len(job.ColorMatrices); n > 0 {
		rows = append(rows, [2]string{"Color Matrices", fmt.Sprintf("%d", n)})
	}
	if job.BlurRadius > 0 {
		rows = append(rows, [2]string{"Blur Radius", fmt.Sprintf("%.1f", job.BlurRadius)})
	}
	f.table(sb, "Render Settings", rows)
}

func (f *MarkdownFormatter) writeOutput(sb *strings.Builder, o OutputInfo) {
	rows := [][2]string{
		{"Path", o.Path},
		{"Format", o.Format},
		{"Resolution", fmt.Sprintf("%dx%d", o.Width, o.Height)},
		{"Frames", fmt.Sprintf("%d", o.FrameCount)},
		{"Duration", formatDuration(time.Duration(o.DurationMs) * time.Millisecond)},
		{"File Size", formatBytes(o.FileSize)},
	}
	if o.ElapsedMs > 0 {
		rows = append(rows, [2]string{"Elapsed", fmt.Sprintf("%d ms", o.ElapsedMs)})
	}
	f.table(sb, "Output", rows)
}

func (f *MarkdownFormatter) writeImages(sb *strings.Builder, images []ImageInfo) {
	t := f.translate
	fmt.Fprintf(sb, "## %s\n\n", t("Images"))
	fmt.Fprintf(sb, "| # | %s | %s | %s |\n", t("Timestamp"), t("Path"), t("File Size"))
	sb.WriteString("|---|---|---|---|\n")
	for i, img := range images {
		fmt.Fprintf(sb, "| %d | %s | %s | %s |\n", i+1, formatDuration(img.Timestamp), img.Path, formatBytes(img.Size))
	}
	sb.WriteString("\n")
}

func (f *MarkdownFormatter) formatBitrate(bps int64) string {
	if bps <= 0 {
		return f.translate("N/A")
	}
	if bps >= 1000*1000 {
		return fmt.Sprintf("%.2f Mbps", float64(bps)/1e6)
	}
	return fmt.Sprintf("%.0f kbps", float64(bps)/1e3)
}

func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%.2f s", d.Seconds())
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}

package console

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/xhad/docload/internal/models"
	"github.com/xhad/docload/pkg/llm"
)

// DisableColor turns off color codes for all console output.
func DisableColor() {
	color.NoColor = true
}

func ProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(color.BlueString(description)),
		progressbar.OptionSetItsString("pages"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func Spinner(description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(color.CyanString(description)),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWidth(20),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// PrintDocuments writes the document count followed by the content of the
// first document and its metadata, then the metadata of the rest.
func PrintDocuments(w io.Writer, docs []models.Document) {
	heading := color.New(color.FgGreen, color.Bold).SprintFunc()
	label := color.New(color.FgCyan).SprintFunc()

	fmt.Fprintf(w, "%s %d\n", heading("Documents:"), len(docs))
	if len(docs) == 0 {
		return
	}

	fmt.Fprintf(w, "\n%s\n%s\n", label("Content:"), docs[0].PageContent)
	fmt.Fprintf(w, "\n%s %s\n", label("Metadata:"), FormatMetadata(docs[0].Metadata))
	for i, doc := range docs[1:] {
		fmt.Fprintf(w, "%s %s\n", label(fmt.Sprintf("[%d]", i+1)), FormatMetadata(doc.Metadata))
	}
}

// PrintResult writes a labelled model response.
func PrintResult(w io.Writer, title, text string) {
	fmt.Fprintf(w, "\n%s\n%s\n", color.New(color.FgCyan, color.Bold).Sprint(title), text)
}

// PrintStream writes chunks as they arrive under title and returns the
// error that ended the stream, if any.
func PrintStream(w io.Writer, title string, stream <-chan llm.Chunk) error {
	fmt.Fprintf(w, "\n%s\n", color.New(color.FgCyan, color.Bold).Sprint(title))
	for chunk := range stream {
		if chunk.Err != nil {
			fmt.Fprintln(w)
			return chunk.Err
		}
		fmt.Fprint(w, chunk.Text)
	}
	fmt.Fprintln(w)
	return nil
}

// FormatMetadata renders m as key=value pairs in key order.
func FormatMetadata(m map[string]interface{}) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = fmt.Sprintf("%s=%v", k, m[k])
	}
	return "{" + strings.Join(pairs, " ") + "}"
}

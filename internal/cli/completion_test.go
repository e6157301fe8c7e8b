package cli

import (
	"context"
	"io"
	"slices"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

func TestCompleteTrackIDs(t *testing.T) {
	c := testCLI(t, dataDir(t))

	tests := []struct {
		prefix string
		want   []string
	}{
		{"", []string{"ideogram", "coverage", "baf", "genes", "variants"}},
		{"g", []string{"genes"}},
		{"x", []string{}},
	}
	for _, tt := range tests {
		t.Run("prefix "+tt.prefix, func(t *testing.T) {
			got, dir := c.completeTrackIDs(nil, nil, tt.prefix)
			if dir != cobra.ShellCompDirectiveNoFileComp {
				t.Errorf("directive = %v", dir)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("completeTrackIDs(%q) = %v, want %v", tt.prefix, got, tt.want)
			}
		})
	}
}

func TestCompleteChromosomes(t *testing.T) {
	c := testCLI(t, dataDir(t))
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())

	got, dir := c.completeChromosomes(cmd, nil, "")
	if dir != cobra.ShellCompDirectiveNoFileComp {
		t.Errorf("directive = %v", dir)
	}
	if !slices.Equal(got, []string{"1", "2"}) {
		t.Errorf("completeChromosomes() = %v, want [1 2]", got)
	}
}

func TestCompleteWithoutSource(t *testing.T) {
	c := New(io.Discard, log.InfoLevel)
	if _, dir := c.completeTrackIDs(nil, nil, ""); dir != cobra.ShellCompDirectiveError {
		t.Errorf("track ids directive = %v, want error", dir)
	}
	if _, dir := c.completeChromosomes(&cobra.Command{}, nil, ""); dir != cobra.ShellCompDirectiveError {
		t.Errorf("chromosomes directive = %v, want error", dir)
	}
}

func TestCompleteFormats(t *testing.T) {
	got, _ := completeFormats(nil, nil, "p")
	if !slices.Equal(got, []string{"png", "pdf"}) {
		t.Errorf("completeFormats(p) = %v", got)
	}
}

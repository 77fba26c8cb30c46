package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// UCSC download server
const ucscDownloadURL = "https://hgdownload.soe.ucsc.edu/goldenPath"

// refFlatURL returns the refFlat table URL of a UCSC genome assembly.
func refFlatURL(genome string) string {
	return fmt.Sprintf("%s/%s/database/refFlat.txt.gz", ucscDownloadURL, genome)
}

func newDownloadCmd() *cobra.Command {
	var genome, outputDir string

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download the UCSC refFlat table of a genome",
		Long: `Download refFlat.txt.gz for a UCSC genome assembly. Without --output the
file is stored in ~/.gvcfcov/<genome>/ and 'gvcfcov coverage --genome' finds it
there.`,
		Example: `  gvcfcov download
  gvcfcov download --genome hg19
  gvcfcov download --genome hg38 --output /data/annotation`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDownload(cmd.OutOrStdout(), genome, outputDir)
		},
	}

	cmd.Flags().StringVar(&genome, "genome", "hg38", "UCSC genome assembly (e.g. hg19, hg38)")
	cmd.Flags().StringVar(&outputDir, "output", "", "Output directory (default: ~/.gvcfcov/<genome>/)")

	return cmd
}

func runDownload(w io.Writer, genome, outputDir string) error {
	destDir := outputDir
	if destDir == "" {
		destDir = DefaultRefFlatDir(genome)
		if destDir == "" {
			return fmt.Errorf("cannot determine home directory")
		}
	}

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("cannot create directory %s: %w", destDir, err)
	}

	url := refFlatURL(genome)
	fmt.Fprintf(w, "Downloading UCSC refFlat for %s...\n", genome)
	fmt.Fprintf(w, "Destination: %s\n\n", destDir)

	if err := downloadFile(w, url, filepath.Join(destDir, filepath.Base(url))); err != nil {
		return fmt.Errorf("downloading refFlat: %w", err)
	}

	fmt.Fprintf(w, "\nDownload complete!\n")
	fmt.Fprintf(w, "To compute coverage, run:\n")
	fmt.Fprintf(w, "  gvcfcov coverage --genome %s -I input.g.vcf.gz\n", genome)
	return nil
}

// downloadFile downloads a file from URL to the destination path with progress.
func downloadFile(w io.Writer, url, destPath string) error {
	// Check if file already exists
	if info, err := os.Stat(destPath); err == nil {
		fmt.Fprintf(w, "  %s already exists (%s), skipping\n", filepath.Base(destPath), formatSize(info.Size()))
		return nil
	}

	fmt.Fprintf(w, "  Downloading %s...\n", filepath.Base(destPath))

	client := &http.Client{
		Timeout: 30 * time.Minute,
	}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP error: %s", resp.Status)
	}

	// destPath only appears once the transfer is complete.
	tmpPath := destPath + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}

	var downloaded int64
	pw := &progressWriter{
		out:        w,
		total:      resp.ContentLength,
		downloaded: &downloaded,
		lastPrint:  time.Now(),
	}

	_, err = io.Copy(f, io.TeeReader(resp.Body, pw))
	f.Close()

	if err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("download failed: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename file: %w", err)
	}

	fmt.Fprintf(w, "    Done: %s\n", formatSize(downloaded))
	return nil
}

// progressWriter tracks download progress.
type progressWriter struct {
	out        io.Writer
	total      int64
	downloaded *int64
	lastPrint  time.Time
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	n := len(p)
	*pw.downloaded += int64(n)

	// Print progress every second
	if time.Since(pw.lastPrint) > time.Second {
		if pw.total > 0 {
			pct := float64(*pw.downloaded) / float64(pw.total) * 100
			fmt.Fprintf(pw.out, "\r    Progress: %s / %s (%.1f%%)  ",
				formatSize(*pw.downloaded), formatSize(pw.total), pct)
		} else {
			fmt.Fprintf(pw.out, "\r    Progress: %s  ", formatSize(*pw.downloaded))
		}
		pw.lastPrint = time.Now()
	}

	return n, nil
}

// formatSize formats bytes as human-readable size.
func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// DefaultRefFlatDir returns the default download directory of a genome.
func DefaultRefFlatDir(genome string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".gvcfcov", strings.ToLower(genome))
}

// FindRefFlat looks for a downloaded refFlat table of genome.
func FindRefFlat(genome string) (string, bool) {
	dir := DefaultRefFlatDir(genome)
	if dir == "" {
		return "", false
	}
	path := filepath.Join(dir, filepath.Base(refFlatURL(genome)))
	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	return path, true
}

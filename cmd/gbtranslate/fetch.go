package main

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/gbtranslate/internal/genbank"
)

// NCBI E-utilities efetch endpoint
const efetchURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/efetch.fcgi"

func newFetchCmd() *cobra.Command {
	var (
		outputPath string
		force      bool
	)

	cmd := &cobra.Command{
		Use:   "fetch <accession>...",
		Short: "Download GenBank records from NCBI",
		Long: `Download nucleotide records in GenBank format (with parts) from NCBI
E-utilities. Each accession is saved as <accession>.gb unless --output is
given. An NCBI API key (fetch.api_key) raises the request rate limit.`,
		Example: `  gbtranslate fetch NC_005816
  gbtranslate fetch -o plasmid.gb NC_005816
  gbtranslate fetch NC_005816 NC_000913`,
		Args: usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if outputPath != "" && len(args) > 1 {
				return &usageError{errors.New("--output can only be used with a single accession")}
			}
			if err := bindFlags(cmd, map[string]string{keyAPIKey: "api-key"}); err != nil {
				return err
			}

			f := &fetcher{
				client:  &http.Client{Timeout: 10 * time.Minute},
				baseURL: efetchURL,
				apiKey:  viper.GetString(keyAPIKey),
				out:     cmd.OutOrStdout(),
			}

			for _, acc := range args {
				dest := outputPath
				if dest == "" {
					dest = acc + ".gb"
				}
				if info, err := os.Stat(dest); err == nil && !force {
					fmt.Fprintf(f.out, "  %s already exists (%s), skipping\n", dest, formatSize(info.Size()))
					continue
				}
				if err := f.fetch(acc, dest); err != nil {
					return fmt.Errorf("fetch %s: %w", acc, err)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file (default: <accession>.gb)")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing files")
	cmd.Flags().String("api-key", "", "NCBI API key")

	return cmd
}

// fetcher downloads GenBank records over HTTP.
type fetcher struct {
	client  *http.Client
	baseURL string
	apiKey  string
	out     io.Writer
}

// requestURL returns the efetch URL for one nucleotide accession.
func (f *fetcher) requestURL(accession string) string {
	q := url.Values{}
	q.Set("db", "nuccore")
	q.Set("id", accession)
	q.Set("rettype", "gbwithparts")
	q.Set("retmode", "text")
	if f.apiKey != "" {
		q.Set("api_key", f.apiKey)
	}
	return f.baseURL + "?" + q.Encode()
}

// fetch downloads accession to destPath with progress. The download is
// parsed before it replaces destPath, so error pages are never saved.
func (f *fetcher) fetch(accession, destPath string) error {
	fmt.Fprintf(f.out, "  Downloading %s...\n", accession)
	logger.Debug("efetch request", zap.String("accession", accession), zap.String("dest", destPath))

	resp, err := f.client.Get(f.requestURL(accession))
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP error: %s", resp.Status)
	}

	if dir := filepath.Dir(destPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}

	tmpPath := destPath + ".tmp"
	out, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}

	var downloaded int64
	pw := &progressWriter{
		w:          f.out,
		total:      resp.ContentLength,
		downloaded: &downloaded,
		lastPrint:  time.Now(),
	}

	_, err = io.Copy(out, io.TeeReader(resp.Body, pw))
	out.Close()

	if err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("download failed: %w", err)
	}

	records, err := genbank.ReadAll(tmpPath)
	if err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("invalid GenBank response: %w", err)
	}
	if len(records) == 0 {
		os.Remove(tmpPath)
		return fmt.Errorf("no GenBank record returned")
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename file: %w", err)
	}

	fmt.Fprintf(f.out, "    Done: %s, %d record(s) -> %s\n", formatSize(downloaded), len(records), destPath)
	return nil
}

// progressWriter tracks download progress.
type progressWriter struct {
	w          io.Writer
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
			fmt.Fprintf(pw.w, "\r    Progress: %s / %s (%.1f%%)  ",
				formatSize(*pw.downloaded), formatSize(pw.total), pct)
		} else {
			fmt.Fprintf(pw.w, "\r    Progress: %s  ", formatSize(*pw.downloaded))
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

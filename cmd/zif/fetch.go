package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/spf13/cobra"
)

const ifArchiveZcodeIndexURL = "https://www.ifarchive.org/indexes/if-archive/games/zcode/"

var zcodeLinkPattern = regexp.MustCompile(`.*\.z[12345678]$`)

func newFetchCommand() *cobra.Command {
	var outputDir string

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download the IF Archive's zcode story catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			return fetchCatalog(outputDir)
		},
	}
	cmd.Flags().StringVar(&outputDir, "output", "stories", "directory to download stories into")
	return cmd
}

type catalogEntry struct {
	name string
	url  string
}

func fetchCatalog(outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	client := &http.Client{Timeout: 30 * time.Second}
	res, err := client.Get(ifArchiveZcodeIndexURL)
	if err != nil {
		return fmt.Errorf("fetching index: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("fetching index: unexpected status %d", res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return fmt.Errorf("parsing index: %w", err)
	}

	var games []catalogEntry
	doc.Find("dl dt").Each(func(i int, s *goquery.Selection) {
		href, exists := s.Find("a").Attr("href")
		if !exists || !zcodeLinkPattern.MatchString(href) {
			return
		}
		games = append(games, catalogEntry{
			name: filepath.Base(href),
			url:  "https://www.ifarchive.org" + href,
		})
	})

	fmt.Printf("Found %d games to download\n", len(games))

	downloaded, skipped, failed := 0, 0, 0
	for i, game := range games {
		destPath := filepath.Join(outputDir, game.name)
		if _, err := os.Stat(destPath); err == nil {
			fmt.Printf("[%d/%d] skipping %s (already exists)\n", i+1, len(games), game.name)
			skipped++
			continue
		}

		fmt.Printf("[%d/%d] downloading %s... ", i+1, len(games), game.name)
		if err := downloadTo(client, game.url, destPath); err != nil {
			fmt.Printf("FAILED: %v\n", err)
			failed++
			continue
		}
		fmt.Println("OK")
		downloaded++
		time.Sleep(100 * time.Millisecond) // be polite to the archive server
	}

	fmt.Printf("\nDownloaded: %d, Skipped: %d, Failed: %d\n", downloaded, skipped, failed)
	return writeManifest(outputDir, games)
}

func downloadTo(client *http.Client, url, destPath string) error {
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return os.WriteFile(destPath, data, 0644)
}

func writeManifest(outputDir string, games []catalogEntry) error {
	var manifest strings.Builder
	for _, game := range games {
		manifest.WriteString(game.name + "\n")
	}
	return os.WriteFile(filepath.Join(outputDir, "manifest.txt"), []byte(manifest.String()), 0644)
}

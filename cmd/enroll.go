package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/satriadp/hadirku/internal/capture"
	"github.com/satriadp/hadirku/internal/config"
	"github.com/satriadp/hadirku/internal/engine"
	"github.com/satriadp/hadirku/internal/names"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var enrollCmd = &cobra.Command{
	Use:   "enroll [image-path]",
	Short: "Enroll identities from face photos",
	Long: `Enroll one identity from a photo, or a whole directory of photos.

Single mode requires --name; the photo is sent to the extraction server
and the resulting embedding is checked against already enrolled faces
before it is stored.

Bulk mode (--dir) enrolls every image in a directory. The identity name
is taken from the file name: "Budi Santoso_2110501001.jpg" enrolls
"Budi Santoso" with external reference 2110501001.

Example:
  hadirku enroll --name "Budi Santoso" --ref 2110501001 face.jpg
  hadirku enroll --dir ./class-photos`,
	RunE: runEnroll,
}

func init() {
	rootCmd.AddCommand(enrollCmd)

	enrollCmd.Flags().String("name", "", "Display name for the enrolled identity")
	enrollCmd.Flags().String("ref", "", "External reference (student or employee number)")
	enrollCmd.Flags().String("dir", "", "Enroll every image in this directory")
}

// isImageFile checks if a file has a supported image extension
func isImageFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png", ".webp", ".bmp":
		return true
	}
	return false
}

// identityFromFilename splits "Name_ref.jpg" into name and external ref.
// Files without an underscore enroll with the whole base name and no ref.
func identityFromFilename(path string) (string, string) {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if idx := strings.LastIndex(base, "_"); idx > 0 {
		return names.Clean(base[:idx]), names.Clean(base[idx+1:])
	}
	return names.Clean(base), ""
}

func runEnroll(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	dir := mustGetString(cmd, "dir")
	if dir == "" && len(args) != 1 {
		return errors.New("provide an image path, or --dir for bulk enrollment")
	}

	st, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	service := engine.NewEnrollmentService(st, cfg.Recognition.Dim, cfg.Recognition.DedupThreshold)
	extractor := capture.NewClient(&cfg.Extractor)
	ctx := cmd.Context()

	if dir != "" {
		return enrollDirectory(ctx, service, extractor, dir)
	}

	name := names.Clean(mustGetString(cmd, "name"))
	if name == "" {
		return errors.New("--name is required for single enrollment")
	}
	ref := names.Clean(mustGetString(cmd, "ref"))

	identity, err := enrollFile(ctx, service, extractor, args[0], name, ref)
	if err != nil {
		return err
	}
	fmt.Printf("Enrolled %s as identity %d\n", identity.DisplayName, identity.ID)
	return nil
}

// enrollFile extracts the embedding from one image and enrolls it.
func enrollFile(ctx context.Context, service *engine.EnrollmentService, extractor *capture.Client, path, name, ref string) (*enrolledIdentity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	if prepared, err := capture.PrepareFrame(data); err == nil {
		data = prepared
	}

	emb, err := extractor.ExtractFace(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	identity, err := service.Enroll(ctx, name, ref, emb)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return &enrolledIdentity{ID: identity.ID, DisplayName: identity.DisplayName}, nil
}

type enrolledIdentity struct {
	ID          int64
	DisplayName string
}

// enrollDirectory enrolls every image file in dir, reporting per-file
// failures at the end instead of aborting the batch.
func enrollDirectory(ctx context.Context, service *engine.EnrollmentService, extractor *capture.Client, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("cannot read folder %s: %w", dir, err)
	}

	var filePaths []string
	for _, entry := range entries {
		if !entry.IsDir() && isImageFile(entry.Name()) {
			filePaths = append(filePaths, filepath.Join(dir, entry.Name()))
		}
	}
	if len(filePaths) == 0 {
		fmt.Println("No image files found in the specified folder.")
		return nil
	}

	fmt.Printf("Found %d image(s) to enroll\n", len(filePaths))
	bar := progressbar.NewOptions(len(filePaths),
		progressbar.OptionSetDescription("Enrolling"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("faces"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)

	var enrolled int
	var failures []string
	seen := make(map[string]string)
	for _, path := range filePaths {
		name, ref := identityFromFilename(path)
		// Two photos of the same person in one batch would burn an
		// extraction round trip just to hit the duplicate check.
		key := names.Normalize(name)
		if first, ok := seen[key]; ok {
			failures = append(failures, fmt.Sprintf("%s: same name as %s, skipped", filepath.Base(path), first))
			bar.Add(1)
			continue
		}
		seen[key] = filepath.Base(path)
		if _, err := enrollFile(ctx, service, extractor, path, name, ref); err != nil {
			failures = append(failures, err.Error())
		} else {
			enrolled++
		}
		bar.Add(1)
	}
	fmt.Println()

	for _, msg := range failures {
		fmt.Printf("Failed: %s\n", msg)
	}
	fmt.Printf("Enrolled %d of %d image(s)\n", enrolled, len(filePaths))

	if enrolled == 0 {
		return errors.New("no identities were enrolled")
	}
	return nil
}

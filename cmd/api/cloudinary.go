package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"regexp"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/speps/go-hashids/v2"
)

// Cloudinary folders per image kind.
const (
	folderBusinesses = "businesses"
	folderReviews    = "reviews"
	folderProfiles   = "profiles"
)

// imageStore keeps uploaded images; URLs are what the database stores.
type imageStore interface {
	Upload(ctx context.Context, file io.Reader, folder string, ownerID int64) (string, error)
	Destroy(ctx context.Context, imageURL string) error
}

type cloudinaryStore struct {
	cld *cloudinary.Cloudinary
	ids *hashids.HashID
	seq atomic.Int64
}

func newCloudinaryStore(cloudinaryURL, salt string) (*cloudinaryStore, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("cloudinary config: %w", err)
	}

	hd := hashids.NewData()
	hd.Salt = salt
	hd.MinLength = 10
	ids, err := hashids.NewWithData(hd)
	if err != nil {
		return nil, fmt.Errorf("hashids: %w", err)
	}

	return &cloudinaryStore{cld: cld, ids: ids}, nil
}

// publicID is unique per upload: owner, clock and a process-local sequence.
func (s *cloudinaryStore) publicID(ownerID int64) (string, error) {
	return s.ids.EncodeInt64([]int64{ownerID, time.Now().UnixNano(), s.seq.Add(1)})
}

func (s *cloudinaryStore) Upload(ctx context.Context, file io.Reader, folder string, ownerID int64) (string, error) {
	publicID, err := s.publicID(ownerID)
	if err != nil {
		return "", fmt.Errorf("public id: %w", err)
	}

	resp, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:    folder,
		PublicID:  publicID,
		Overwrite: api.Bool(false),
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: %w", err)
	}
	if resp.Error.Message != "" {
		return "", fmt.Errorf("cloudinary upload: %s", resp.Error.Message)
	}
	return resp.SecureURL, nil
}

func (s *cloudinaryStore) Destroy(ctx context.Context, imageURL string) error {
	publicID, err := extractPublicIDFromURL(imageURL)
	if err != nil {
		return fmt.Errorf("failed to extract public ID: %w", err)
	}

	_, err = s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("failed to delete photo from Cloudinary: %w", err)
	}
	return nil
}

var versionSegment = regexp.MustCompile(`^v[0-9]+$`)

// extractPublicIDFromURL turns
// https://res.cloudinary.com/demo/image/upload/v1712/businesses/abc.jpg
// into businesses/abc.
func extractPublicIDFromURL(imageURL string) (string, error) {
	parsedURL, err := url.Parse(imageURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL format: %w", err)
	}

	pathParts := strings.Split(parsedURL.Path, "/")
	for i, part := range pathParts {
		if part != "upload" || i+1 >= len(pathParts) {
			continue
		}
		rest := pathParts[i+1:]
		if len(rest) > 1 && versionSegment.MatchString(rest[0]) {
			rest = rest[1:]
		}
		id := strings.Join(rest, "/")
		id = strings.TrimSuffix(id, path.Ext(id))
		if id == "" {
			break
		}
		return id, nil
	}

	return "", errors.New("failed to extract public ID from URL")
}

// destroyQuietly removes images whose rows are gone; failures only leave an
// orphaned asset behind.
func (app *application) destroyQuietly(urls ...string) {
	if app.images == nil || len(urls) == 0 {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		for _, u := range urls {
			if err := app.images.Destroy(ctx, u); err != nil {
				app.logger.Warnw("failed to delete image from cloudinary", "url", u, "error", err)
			}
		}
	}()
}

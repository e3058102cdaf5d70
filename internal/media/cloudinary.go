package media

import (
	"context"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/sirupsen/logrus"
)

// Cloudinary stores meme media on Cloudinary. A zero-credential instance is
// valid: it starts fine and fails every upload with ErrNotConfigured.
type Cloudinary struct {
	cld    *cloudinary.Cloudinary
	folder string
	log    logrus.FieldLogger
}

func NewCloudinary(cloudName, apiKey, apiSecret, folder string, log logrus.FieldLogger) (*Cloudinary, error) {
	c := &Cloudinary{folder: folder, log: log.WithField("component", "cloudinary")}
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		c.log.Warn("cloudinary credentials missing, uploads are disabled")
		return c, nil
	}

	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("init cloudinary: %w", err)
	}
	cld.Config.URL.Secure = true
	c.cld = cld
	return c, nil
}

func (c *Cloudinary) Configured() bool {
	return c.cld != nil
}

func (c *Cloudinary) Upload(ctx context.Context, r io.Reader, filename string) (Upload, error) {
	if c.cld == nil {
		return Upload{}, ErrNotConfigured
	}

	res, err := c.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		Folder:         c.folder,
		ResourceType:   "auto",
		UniqueFilename: boolPtr(true),
	})
	if err != nil {
		return Upload{}, fmt.Errorf("cloudinary upload: %w", err)
	}
	if res.Error.Message != "" {
		return Upload{}, fmt.Errorf("cloudinary upload: %s", res.Error.Message)
	}

	c.log.WithFields(logrus.Fields{
		"filename":      filename,
		"public_id":     res.PublicID,
		"resource_type": res.ResourceType,
		"bytes":         res.Bytes,
	}).Info("media uploaded")

	return Upload{
		URL:      res.SecureURL,
		PublicID: res.PublicID,
		Kind:     KindFromResourceType(res.ResourceType),
	}, nil
}

func (c *Cloudinary) Delete(ctx context.Context, publicID string, kind Kind) error {
	if c.cld == nil {
		return ErrNotConfigured
	}
	res, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: string(kind),
		Invalidate:   boolPtr(true),
	})
	if err != nil {
		return fmt.Errorf("cloudinary destroy %s: %w", publicID, err)
	}
	// "not found" means there is nothing left to clean up.
	if res.Result != "ok" && res.Result != "not found" {
		return fmt.Errorf("cloudinary destroy %s: %s", publicID, res.Result)
	}
	return nil
}

// KindFromResourceType classifies a Cloudinary resource type. Everything that
// is not a video is shown as an image.
func KindFromResourceType(rt string) Kind {
	if rt == string(KindVideo) {
		return KindVideo
	}
	return KindImage
}

func boolPtr(b bool) *bool { return &b }

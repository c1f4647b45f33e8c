package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"

	"rewear/config"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"go.uber.org/zap"
)

// CloudinaryStore 上傳到 Cloudinary，由 Cloudinary 做縮圖與品質壓縮
type CloudinaryStore struct {
	cld            *cloudinary.Cloudinary
	folder         string
	transformation string
	logger         *zap.Logger
}

var errCloudinaryConfig = errors.New("cloudinary credentials not configured")

func NewCloudinaryStore(logger *zap.Logger, conf *config.Configuration) (*CloudinaryStore, error) {
	var (
		cld *cloudinary.Cloudinary
		err error
	)
	c := conf.Media.Cloudinary
	switch {
	case c.URL != "":
		cld, err = cloudinary.NewFromURL(c.URL)
	case c.CloudName != "" && c.APIKey != "" && c.APISecret != "":
		cld, err = cloudinary.NewFromParams(c.CloudName, c.APIKey, c.APISecret)
	default:
		return nil, errCloudinaryConfig
	}
	if err != nil {
		return nil, fmt.Errorf("init cloudinary: %w", err)
	}
	return &CloudinaryStore{
		cld:            cld,
		folder:         conf.Media.Folder,
		transformation: cloudinaryTransformation(conf.Media.MaxDimension),
		logger:         logger,
	}, nil
}

// c_limit：只縮不放大
func cloudinaryTransformation(maxDim int) string {
	if maxDim <= 0 {
		return "q_auto"
	}
	d := strconv.Itoa(maxDim)
	return "c_limit,h_" + d + ",w_" + d + "/q_auto"
}

func (s *CloudinaryStore) Driver() string { return config.MediaDriverCloudinary }

func (s *CloudinaryStore) Upload(ctx context.Context, file File) (*Asset, error) {
	if _, err := Sniff(file.Data); err != nil {
		return nil, err
	}
	result, err := s.cld.Upload.Upload(ctx, bytes.NewReader(file.Data), uploader.UploadParams{
		Folder:         s.folder,
		ResourceType:   "image",
		Transformation: s.transformation,
	})
	if err != nil {
		return nil, fmt.Errorf("cloudinary upload: %w", err)
	}
	if result.Error.Message != "" {
		return nil, fmt.Errorf("cloudinary upload: %s", result.Error.Message)
	}
	return &Asset{URL: result.SecureURL, PublicID: result.PublicID}, nil
}

func (s *CloudinaryStore) Delete(ctx context.Context, publicID string) error {
	result, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return err
	}
	if result.Error.Message != "" {
		return fmt.Errorf("cloudinary destroy: %s", result.Error.Message)
	}
	return nil
}

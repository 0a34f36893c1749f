package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/iotfarm-web/pkg/auth/session"
	"github.com/angelmondragon/iotfarm-web/pkg/enums"
	pkgerrors "github.com/angelmondragon/iotfarm-web/pkg/errors"
	"github.com/angelmondragon/iotfarm-web/pkg/iotfarm"
	"github.com/angelmondragon/iotfarm-web/pkg/logger"
	"github.com/angelmondragon/iotfarm-web/pkg/notify"
	"github.com/angelmondragon/iotfarm-web/pkg/pagination"
	"github.com/angelmondragon/iotfarm-web/pkg/storage/s3"
	"github.com/angelmondragon/iotfarm-web/pkg/validate"
)

const (
	MsgUploadFailed   = "Upload image failed!"
	MsgProductCreated = "Product created"
	MsgProductUpdated = "Product updated"

	productFolder = "products"
	avatarFolder  = "avatars"
)

type remote interface {
	ListProducts(ctx context.Context, page pagination.Params) (pagination.Page[iotfarm.Product], error)
	GetProduct(ctx context.Context, productID string) (iotfarm.Product, error)
	CreateProduct(ctx context.Context, token string, input iotfarm.ProductInput) (iotfarm.Product, error)
	UpdateProduct(ctx context.Context, token, productID string, input iotfarm.ProductInput) (iotfarm.Product, error)
}

type uploader interface {
	Upload(ctx context.Context, obj s3.Object) (string, error)
}

type Service interface {
	List(ctx context.Context, page pagination.Params) (pagination.Page[iotfarm.Product], error)
	Get(ctx context.Context, productID string) (iotfarm.Product, error)
	Create(ctx context.Context, sess session.Session, input iotfarm.ProductInput, image *Image) (iotfarm.Product, error)
	Update(ctx context.Context, sess session.Session, productID string, input iotfarm.ProductInput, image *Image) (iotfarm.Product, error)
	UploadAvatar(ctx context.Context, sess session.Session, image Image) (string, error)
}

type service struct {
	api      remote
	storage  uploader
	maxBytes int64
	notifier notify.Notifier
	logg     *logger.Logger
}

// NewService builds the catalog service. storage may be nil, in which case every
// upload fails with MsgUploadFailed.
func NewService(api remote, storage uploader, maxBytes int64, notifier notify.Notifier, logg *logger.Logger) (Service, error) {
	if api == nil {
		return nil, fmt.Errorf("iotfarm client required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{api: api, storage: storage, maxBytes: maxBytes, notifier: notifier, logg: logg}, nil
}

func (s *service) List(ctx context.Context, page pagination.Params) (pagination.Page[iotfarm.Product], error) {
	return s.api.ListProducts(ctx, page.Normalize())
}

func (s *service) Get(ctx context.Context, productID string) (iotfarm.Product, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return iotfarm.Product{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	return s.api.GetProduct(ctx, productID)
}

func (s *service) Create(ctx context.Context, sess session.Session, input iotfarm.ProductInput, image *Image) (iotfarm.Product, error) {
	if err := requireStaff(sess); err != nil {
		return iotfarm.Product{}, err
	}
	if err := validateProduct(input); err != nil {
		return iotfarm.Product{}, err
	}
	if image != nil {
		url, err := s.upload(ctx, sess, productFolder, *image)
		if err != nil {
			return iotfarm.Product{}, err
		}
		input.Image = url
	}
	product, err := s.api.CreateProduct(ctx, sess.Bearer(), input)
	if err != nil {
		s.toast(ctx, sess, notify.Error(pkgerrors.PublicMessage(err)))
		return iotfarm.Product{}, err
	}
	s.toast(ctx, sess, notify.Success(MsgProductCreated))
	return product, nil
}

// Update keeps the current image URL unless a new image uploads successfully.
func (s *service) Update(ctx context.Context, sess session.Session, productID string, input iotfarm.ProductInput, image *Image) (iotfarm.Product, error) {
	if err := requireStaff(sess); err != nil {
		return iotfarm.Product{}, err
	}
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return iotfarm.Product{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if err := validateProduct(input); err != nil {
		return iotfarm.Product{}, err
	}
	if image != nil {
		url, err := s.upload(ctx, sess, productFolder, *image)
		if err != nil {
			return iotfarm.Product{}, err
		}
		input.Image = url
	}
	product, err := s.api.UpdateProduct(ctx, sess.Bearer(), productID, input)
	if err != nil {
		s.toast(ctx, sess, notify.Error(pkgerrors.PublicMessage(err)))
		return iotfarm.Product{}, err
	}
	s.toast(ctx, sess, notify.Success(MsgProductUpdated))
	return product, nil
}

func (s *service) UploadAvatar(ctx context.Context, sess session.Session, image Image) (string, error) {
	if !sess.Authenticated() {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	return s.upload(ctx, sess, avatarFolder+"/"+sess.Identity(), image)
}

func (s *service) upload(ctx context.Context, sess session.Session, folder string, image Image) (string, error) {
	contentType, ext, err := sniffImage(image.Data, s.maxBytes)
	if err != nil {
		return "", err
	}
	if s.storage == nil {
		s.toast(ctx, sess, notify.Error(MsgUploadFailed))
		return "", pkgerrors.New(pkgerrors.CodeDependency, MsgUploadFailed)
	}
	url, err := s.storage.Upload(ctx, s3.Object{
		Folder:      folder,
		Extension:   ext,
		ContentType: contentType,
		Body:        image.Data,
	})
	if err != nil {
		s.logg.Error(s.logg.WithFields(ctx, map[string]any{
			"folder":   folder,
			"filename": image.Filename,
		}), "image upload failed", err)
		s.toast(ctx, sess, notify.Error(MsgUploadFailed))
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, MsgUploadFailed)
	}
	return url, nil
}

func (s *service) toast(ctx context.Context, sess session.Session, toast notify.Toast) {
	if _, err := s.notifier.Push(ctx, sess.Identity(), toast); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "catalog toast not queued")
	}
}

func requireStaff(sess session.Session) error {
	if !sess.Authenticated() {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if !sess.HasRole(enums.RoleStaff, enums.RoleManager, enums.RoleAdmin) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "staff role required")
	}
	return nil
}

func validateProduct(input iotfarm.ProductInput) error {
	if err := validate.Struct(input); err != nil {
		return err
	}
	if input.Price.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
			WithDetails(map[string]string{"price": "must be at least 0"})
	}
	return nil
}

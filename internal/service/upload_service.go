package service

import (
	"errors"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/qs3c/devmatch_server/config"
	"github.com/qs3c/devmatch_server/internal/pkg/oss"
	"github.com/qs3c/devmatch_server/internal/repository"
)

var (
	ErrFileTooLarge       = errors.New("文件过大")
	ErrInvalidFormat      = errors.New("不支持的文件格式")
	ErrStorageUnavailable = errors.New("文件存储未配置")
	defaultMaxImageSize   = int64(5 << 20)
	defaultMaxResumeSize  = int64(10 << 20)
	imageExtensions       = []string{".jpg", ".jpeg", ".png", ".webp"}
	resumeExtensions      = []string{".pdf"}
)

// Uploader 对象存储，oss.Client 实现
type Uploader interface {
	Upload(kind string, ownerID int64, data []byte, ext string) (string, error)
}

type UploadService struct {
	store    *repository.Store
	cfg      *config.Config
	uploader Uploader
	logger   *zap.Logger
}

// NewUploadService uploader 为 nil 表示未配置 OSS，上传返回 ErrStorageUnavailable
func NewUploadService(store *repository.Store, cfg *config.Config, uploader Uploader, logger *zap.Logger) *UploadService {
	return &UploadService{
		store:    store,
		cfg:      cfg,
		uploader: uploader,
		logger:   logger.Named("upload"),
	}
}

// UploadAvatar 上传工程师头像，同步更新用户头像
func (s *UploadService) UploadAvatar(userID int64, filename string, data []byte) (string, error) {
	engineer, err := s.store.Engineers.GetByUserID(userID)
	if err != nil {
		return "", notFound(err, ErrEngineerNotFound)
	}
	url, err := s.put(oss.KindAvatar, engineer.ID, filename, data, imageExtensions, s.maxImageSize())
	if err != nil {
		return "", err
	}
	if err := s.store.Engineers.UpdateFields(engineer.ID, map[string]interface{}{"avatar_url": url}); err != nil {
		return "", err
	}
	if err := s.store.Users.UpdateFields(userID, map[string]interface{}{"avatar_url": url}); err != nil {
		return "", err
	}
	return url, nil
}

// UploadLogo 上传企业 logo
func (s *UploadService) UploadLogo(userID int64, filename string, data []byte) (string, error) {
	company, err := s.store.Companies.GetByUserID(userID)
	if err != nil {
		return "", notFound(err, ErrCompanyNotFound)
	}
	url, err := s.put(oss.KindLogo, company.ID, filename, data, imageExtensions, s.maxImageSize())
	if err != nil {
		return "", err
	}
	if err := s.store.Companies.UpdateFields(company.ID, map[string]interface{}{"logo_url": url}); err != nil {
		return "", err
	}
	return url, nil
}

// UploadResume 上传简历，仅支持 PDF
func (s *UploadService) UploadResume(userID int64, filename string, data []byte) (string, error) {
	engineer, err := s.store.Engineers.GetByUserID(userID)
	if err != nil {
		return "", notFound(err, ErrEngineerNotFound)
	}
	url, err := s.put(oss.KindResume, engineer.ID, filename, data, resumeExtensions, s.maxResumeSize())
	if err != nil {
		return "", err
	}
	if err := s.store.Engineers.UpdateFields(engineer.ID, map[string]interface{}{"resume_url": url}); err != nil {
		return "", err
	}
	return url, nil
}

func (s *UploadService) put(kind string, ownerID int64, filename string, data []byte, allowed []string, maxSize int64) (string, error) {
	if s.uploader == nil {
		return "", ErrStorageUnavailable
	}
	if int64(len(data)) > maxSize {
		return "", ErrFileTooLarge
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !contains(allowed, ext) {
		return "", ErrInvalidFormat
	}

	url, err := s.uploader.Upload(kind, ownerID, data, ext)
	if err != nil {
		if errors.Is(err, oss.ErrNotConfigured) {
			return "", ErrStorageUnavailable
		}
		s.logger.Error("upload failed", zap.String("kind", kind), zap.Int64("owner_id", ownerID), zap.Error(err))
		return "", err
	}
	return url, nil
}

func (s *UploadService) maxImageSize() int64 {
	if s.cfg.Upload.MaxImageSize > 0 {
		return s.cfg.Upload.MaxImageSize
	}
	return defaultMaxImageSize
}

func (s *UploadService) maxResumeSize() int64 {
	if s.cfg.Upload.MaxResumeSize > 0 {
		return s.cfg.Upload.MaxResumeSize
	}
	return defaultMaxResumeSize
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

package service

import (
	"context"
	"strings"

	credsdomain "github.com/smallbiznis/fieldbill/internal/credentials/domain"
	"github.com/smallbiznis/fieldbill/internal/kvstore"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log *zap.Logger
	KV  kvstore.Store
}

type Service struct {
	log *zap.Logger
	kv  kvstore.Store
}

func New(p Params) credsdomain.Service {
	return &Service{
		log: p.Log.Named("credentials.service"),
		kv:  p.KV,
	}
}

// Get always reads the persisted record so that a credential change is
// visible to callers that resolve credentials at dispatch time.
func (s *Service) Get(ctx context.Context) (credsdomain.Credentials, error) {
	var creds credsdomain.Credentials
	if _, err := s.kv.Get(ctx, credsdomain.StorageKey, &creds); err != nil {
		return credsdomain.Credentials{}, err
	}
	if creds.APIBaseURL == "" {
		creds.APIBaseURL = credsdomain.DefaultAPIBaseURL
	}
	return creds, nil
}

func (s *Service) Set(ctx context.Context, patch credsdomain.Patch) (credsdomain.Credentials, error) {
	var creds credsdomain.Credentials
	if _, err := s.kv.Get(ctx, credsdomain.StorageKey, &creds); err != nil {
		return credsdomain.Credentials{}, err
	}

	apply(&creds.APIToken, patch.APIToken)
	apply(&creds.EntryPoint, patch.EntryPoint)
	apply(&creds.EntryID, patch.EntryID)
	apply(&creds.PublicToken, patch.PublicToken)
	apply(&creds.APIBaseURL, patch.APIBaseURL)

	if err := s.kv.Put(ctx, credsdomain.StorageKey, creds); err != nil {
		return credsdomain.Credentials{}, err
	}

	s.log.Info("credentials updated",
		zap.Bool("configured", creds.IsConfigured()),
	)

	if creds.APIBaseURL == "" {
		creds.APIBaseURL = credsdomain.DefaultAPIBaseURL
	}
	return creds, nil
}

func (s *Service) Clear(ctx context.Context) error {
	return s.kv.Delete(ctx, credsdomain.StorageKey)
}

func (s *Service) IsConfigured(ctx context.Context) (bool, error) {
	creds, err := s.Get(ctx)
	if err != nil {
		return false, err
	}
	return creds.IsConfigured(), nil
}

func apply(dst *string, src *string) {
	if src == nil {
		return
	}
	*dst = strings.TrimSpace(*src)
}

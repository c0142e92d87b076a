package services

import (
	"context"
	"fmt"
	"strings"

	"hotel-reservation/models"
	"hotel-reservation/repositories"
	"hotel-reservation/utils"
)

// CatalogService manages the optional services a reservation can attach.
type CatalogService struct {
	repo  repositories.ServiceRepository
	audit AuditSink
}

func NewCatalogService(repo repositories.ServiceRepository, audit AuditSink) *CatalogService {
	return &CatalogService{repo: repo, audit: audit}
}

type ExtraServiceInput struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" binding:"gte=0"`
}

func (s *CatalogService) Create(ctx context.Context, actor Actor, in ExtraServiceInput) (*models.ExtraService, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, validationf("service name is required")
	}
	if in.Price < 0 {
		return nil, validationf("service price cannot be negative")
	}
	svc := &models.ExtraService{
		Name:        name,
		Description: in.Description,
		Price:       utils.Round2(in.Price),
		Active:      true,
	}
	if err := s.repo.Save(ctx, svc); err != nil {
		return nil, storeErr("service", name, err)
	}
	s.audit.Record(actor.String(), "SERVICE_CREATE", fmt.Sprintf("service %s created", name), "ExtraService", svc.ID)
	return svc, nil
}

func (s *CatalogService) List(ctx context.Context, onlyActive bool) ([]models.ExtraService, error) {
	list, err := s.repo.FindAll(ctx, onlyActive)
	if err != nil {
		return nil, storeErr("services", "all", err)
	}
	return list, nil
}

func (s *CatalogService) ListActive(ctx context.Context) ([]models.ExtraService, error) {
	return s.List(ctx, true)
}

func (s *CatalogService) SetActive(ctx context.Context, actor Actor, id uint, active bool) (*models.ExtraService, error) {
	svc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr("service", id, err)
	}
	if svc.Active == active {
		return svc, nil
	}
	svc.Active = active
	if err := s.repo.Save(ctx, svc); err != nil {
		return nil, storeErr("service", id, err)
	}
	s.audit.Record(actor.String(), "SERVICE_UPDATE", fmt.Sprintf("service %s active=%t", svc.Name, active), "ExtraService", id)
	return svc, nil
}

// priceServices sums the catalog price of every id, duplicates included.
func (s *CatalogService) priceServices(ctx context.Context, ids []uint) (float64, error) {
	found, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return 0, storeErr("services", ids, err)
	}
	var total float64
	for _, id := range ids {
		svc, ok := found[id]
		if !ok {
			return 0, notFound("service", id)
		}
		if !svc.Active {
			return 0, validationf("service %s is not active", svc.Name)
		}
		total += svc.Price
	}
	return utils.Round2(total), nil
}

package farm

import (
	"fmt"
	"strings"

	"github.com/smartfarm/farmstore"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

func (s *Service) ListCrops() ([]*Crop, error) {
	return list(s, s.scm.Crops, "crops")
}

func (s *Service) GetCrop(id uint64) (*Crop, error) {
	return get(s, s.scm.Crops, "Crop", id)
}

func (s *Service) CreateCrop(p CropPayload) (*Crop, error) {
	crop, err := create(s, s.scm.Crops, func(id, now uint64) *Crop {
		return &Crop{
			ID:          id,
			Name:        p.Name,
			Description: p.Description,
			Quantity:    p.Quantity,
			CreatedAt:   now,
		}
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("crop created", "id", crop.ID, "name", crop.Name)
	return crop, nil
}

// UpdateCrop applies the non-nil fields of u and stamps UpdatedAt.
func (s *Service) UpdateCrop(id uint64, u CropUpdate) (*Crop, error) {
	return modify(s, s.scm.Crops, "Crop", id, func(crop *Crop) {
		if u.Name != nil {
			crop.Name = *u.Name
		}
		if u.Description != nil {
			crop.Description = *u.Description
		}
		if u.Quantity != nil {
			crop.Quantity = *u.Quantity
		}
		now := s.now()
		crop.UpdatedAt = &now
	})
}

// CropReport renders a crop as human-readable text.
func (s *Service) CropReport(id uint64) (string, error) {
	crop, err := s.GetCrop(id)
	if err != nil {
		return "", err
	}
	return formatCropReport(crop), nil
}

func formatCropReport(crop *Crop) string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Crop ID: %d\n", crop.ID)
	fmt.Fprintf(&buf, "Name: %s\n", crop.Name)
	fmt.Fprintf(&buf, "Description: %s\n", crop.Description)
	fmt.Fprintf(&buf, "Quantity: %d\n", crop.Quantity)
	fmt.Fprintf(&buf, "Created At: %d\n", crop.CreatedAt)
	if crop.UpdatedAt != nil {
		fmt.Fprintf(&buf, "Updated At: %d", *crop.UpdatedAt)
	} else {
		buf.WriteString("Updated At: never")
	}
	return buf.String()
}

// SearchCrops returns crops whose lowercased name contains the lowercased
// q.Query and
// that satisfy the optional quantity and creation time filters. No matches
// is reported as NotFound.
func (s *Service) SearchCrops(q CropQuery) ([]*Crop, error) {
	lower := cases.Lower(language.Und)
	needle := lower.String(q.Query)

	var result []*Crop
	err := s.view(func(tx *farmstore.Tx) error {
		for _, crop := range s.scm.Crops.All(tx) {
			if !strings.Contains(lower.String(crop.Name), needle) {
				continue
			}
			if q.MinQuantity != nil && crop.Quantity < *q.MinQuantity {
				continue
			}
			if q.Created != nil && !q.Created.Contains(crop.CreatedAt) {
				continue
			}
			result = append(result, crop)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, notFoundf("No matching crops found.")
	}
	return result, nil
}

// PredictedYield is a placeholder estimate: twice the current quantity.
func (s *Service) PredictedYield(cropID uint64) (uint64, error) {
	crop, err := s.GetCrop(cropID)
	if err != nil {
		return 0, err
	}
	return uint64(crop.Quantity) * 2, nil
}

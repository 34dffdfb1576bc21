package models

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/shelfsight/backend/internal/domain/detection"
	"go.uber.org/zap"
)

// modelLogger reports JSON column decode failures. Rows written by this
// code always decode; a warning here means the column was edited out of
// band.
var modelLogger = zap.L().Named("persistence.models")

// DetectionResultModel is the persistence model for the detection
// Result aggregate. Match lists and the share-of-shelf report are
// stored as JSONB; they are read back verbatim and never queried
// field-by-field.
type DetectionResultModel struct {
	TenantAggregateModel
	ImageReference string     `gorm:"type:varchar(500);not null"`
	StoreID        *uuid.UUID `gorm:"type:uuid;index"`
	MatchesJSON    string     `gorm:"column:matches;type:jsonb;default:'[]'"`
	MissingJSON    string     `gorm:"column:missing_skus;type:jsonb;default:'[]'"`
	ShareJSON      string     `gorm:"column:share_of_shelf;type:jsonb;not null"`
	Summary        string     `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (DetectionResultModel) TableName() string {
	return "detection_results"
}

// ToDomain converts the persistence model to a domain Result
func (m *DetectionResultModel) ToDomain() *detection.Result {
	result := &detection.Result{
		ImageReference: m.ImageReference,
		StoreID:        m.StoreID,
		Matches:        make([]detection.SKUMatch, 0),
		MissingSKUs:    make([]detection.CandidateSKU, 0),
		Summary:        m.Summary,
	}
	m.PopulateTenantAggregateRoot(&result.TenantAggregateRoot)

	if m.MatchesJSON != "" && m.MatchesJSON != "[]" {
		var matches []detection.SKUMatch
		if err := json.Unmarshal([]byte(m.MatchesJSON), &matches); err != nil {
			modelLogger.Warn("failed to parse matches JSON",
				zap.String("result_id", m.ID.String()),
				zap.Error(err))
		} else {
			result.Matches = matches
		}
	}

	if m.MissingJSON != "" && m.MissingJSON != "[]" {
		var missing []detection.CandidateSKU
		if err := json.Unmarshal([]byte(m.MissingJSON), &missing); err != nil {
			modelLogger.Warn("failed to parse missing_skus JSON",
				zap.String("result_id", m.ID.String()),
				zap.Error(err))
		} else {
			result.MissingSKUs = missing
		}
	}

	if m.ShareJSON != "" {
		var share detection.ShareOfShelf
		if err := json.Unmarshal([]byte(m.ShareJSON), &share); err != nil {
			modelLogger.Warn("failed to parse share_of_shelf JSON",
				zap.String("result_id", m.ID.String()),
				zap.Error(err))
		} else {
			result.ShareOfShelf = share
		}
	}

	return result
}

// FromDomain populates the persistence model from a domain Result
func (m *DetectionResultModel) FromDomain(r *detection.Result) {
	m.FromDomainTenantAggregateRoot(r.TenantAggregateRoot)
	m.ImageReference = r.ImageReference
	m.StoreID = r.StoreID
	m.Summary = r.Summary

	if jsonBytes, err := json.Marshal(r.Matches); err == nil && len(r.Matches) > 0 {
		m.MatchesJSON = string(jsonBytes)
	} else {
		m.MatchesJSON = "[]"
	}

	if jsonBytes, err := json.Marshal(r.MissingSKUs); err == nil && len(r.MissingSKUs) > 0 {
		m.MissingJSON = string(jsonBytes)
	} else {
		m.MissingJSON = "[]"
	}

	if jsonBytes, err := json.Marshal(r.ShareOfShelf); err == nil {
		m.ShareJSON = string(jsonBytes)
	} else {
		m.ShareJSON = "{}"
	}
}

// DetectionResultModelFromDomain creates a persistence model from a domain Result
func DetectionResultModelFromDomain(r *detection.Result) *DetectionResultModel {
	m := &DetectionResultModel{}
	m.FromDomain(r)
	return m
}

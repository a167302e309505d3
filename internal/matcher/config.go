// Package matcher implements the two-way policy matching engine. Internal
// booking records are compared field-by-field against a counterparty's
// filtered extract, joined on the normalized policy identifier, producing
// one comparison outcome row per compared field plus not-found rows in both
// directions. The package also derives the duplicate/amendment counters
// from the raw, pre-filter extract.
package matcher

import (
	"fmt"
	"runtime"

	"insurance-reconciliation-service/internal/models"
)

// DefaultBatchSize is the number of internal records processed per batch.
const DefaultBatchSize = 500

// Config holds matching engine parameters.
type Config struct {
	// BatchSize is the number of internal records per processing batch.
	BatchSize int

	// Workers bounds the number of batches processed concurrently. A
	// value of 1 forces sequential processing.
	Workers int

	// InternalColumns maps canonical field names to the column headers of
	// the internal booking table.
	InternalColumns map[string]string

	// RequestIDColumn is the internal pass-through request identifier
	// column carried onto every outcome row.
	RequestIDColumn string

	// CompareFields optionally restricts comparison to a subset of
	// canonical fields. Empty means all comparable fields.
	CompareFields []string
}

// DefaultConfig returns the standard matching configuration.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:       DefaultBatchSize,
		Workers:         runtime.NumCPU(),
		InternalColumns: DefaultInternalColumns(),
		RequestIDColumn: "Request Id",
	}
}

// Validate rejects unusable configurations.
func (c *Config) Validate() error {
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive, got %d", c.BatchSize)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	if len(c.InternalColumns) == 0 {
		return fmt.Errorf("internal column mapping is empty")
	}
	if _, ok := c.InternalColumns[models.FieldPolicyNumber]; !ok {
		return fmt.Errorf("internal column mapping lacks %s", models.FieldPolicyNumber)
	}
	return nil
}

// DefaultInternalColumns returns the canonical-field to column-header
// mapping of the internal booking table.
func DefaultInternalColumns() map[string]string {
	return map[string]string{
		models.FieldPolicyNumber:         "Policy Number",
		models.FieldCustomerName:         "Customer Name",
		models.FieldRegistrationNumber:   "Registration Number",
		models.FieldEngineNumber:         "Engine Number",
		models.FieldChassisNumber:        "Chassis No.",
		models.FieldFuelType:             "Fuel Type",
		models.FieldTotalPremium:         "Premium",
		models.FieldTPPremium:            "Final TP Premium",
		models.FieldPolicyStartDate:      "Policy Start Date",
		models.FieldPolicyEndDate:        "Policy End Date",
		models.FieldPreviousPolicyNumber: "Previous Policy Number",
		models.FieldBrokerName:           "Broker Name",
		models.FieldSeatingCapacity:      "Seating Capacity",
		models.FieldInsuranceCompany:     "Insurance Company",
		models.FieldGrossWeight:          "Gross Weight Category",
		models.FieldPolicyType:           "Policy Type",
	}
}

// canonicalFieldOrder fixes the order fields are compared and emitted in,
// so outcome streams are deterministic.
var canonicalFieldOrder = []string{
	models.FieldCustomerName,
	models.FieldPolicyStartDate,
	models.FieldPolicyEndDate,
	models.FieldRegistrationNumber,
	models.FieldEngineNumber,
	models.FieldChassisNumber,
	models.FieldTotalPremium,
	models.FieldTPPremium,
	models.FieldPreviousPolicyNumber,
	models.FieldBrokerName,
	models.FieldFuelType,
	models.FieldSeatingCapacity,
	models.FieldGrossWeight,
	models.FieldPolicyType,
	models.FieldInsuranceCompany,
}

// internalColumnSynonyms maps commonly seen dynamic field names onto
// canonical internal column headers, for fields the extract mapping knows
// but the internal column set does not list.
var internalColumnSynonyms = map[string]string{
	"vehicle_number":       "Registration Number",
	"vehicle_no":           "Registration Number",
	"veh_reg_no":           "Registration Number",
	"registration_no":      "Registration Number",
	"reg_no":               "Registration Number",
	"insured_name":         "Customer Name",
	"client_name":          "Customer Name",
	"policy_holder":        "Customer Name",
	"policy_no":            "Policy Number",
	"chasis_number":        "Chassis No.",
	"chassis_no":           "Chassis No.",
	"engine_no":            "Engine Number",
	"gross_premium":        "Premium",
	"net_premium":          "Premium",
	"vehicle_sub_category": "Vehicle Sub Category",
	"veh_sub_category":     "Vehicle Sub Category",
	"vehicle_sub_type":     "Vehicle Sub Category",
	"sub_category":         "Vehicle Sub Category",
}

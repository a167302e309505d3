// Package config builds the reconciliation service configuration: the
// built-in counterparty catalog plus file and flag overrides loaded
// through viper.
package config

import (
	"fmt"

	"insurance-reconciliation-service/internal/categorize"
	"insurance-reconciliation-service/internal/filterpipe"
	"insurance-reconciliation-service/internal/matcher"
	"insurance-reconciliation-service/internal/models"
	"insurance-reconciliation-service/internal/reconciler"
	"insurance-reconciliation-service/internal/schema"

	"github.com/spf13/viper"
)

// Load assembles the service configuration from the built-in counterparty
// catalog and applies any overrides present in viper (config file,
// environment, flags).
func Load(v *viper.Viper) (*reconciler.Config, error) {
	cfg := reconciler.DefaultServiceConfig()
	cfg.Counterparties = BuiltinCounterparties()

	if v == nil {
		return cfg, nil
	}
	if v.IsSet("batch-size") {
		cfg.Matcher.BatchSize = v.GetInt("batch-size")
	}
	if v.IsSet("workers") {
		cfg.Matcher.Workers = v.GetInt("workers")
	}
	if v.IsSet("compare-fields") {
		cfg.Matcher.CompareFields = v.GetStringSlice("compare-fields")
	}
	if v.IsSet("include-blank-keys") {
		cfg.IncludeBlankKeys = v.GetBool("include-blank-keys")
	}
	if v.IsSet("offline.policy-column") {
		cfg.Offline.PolicyColumn = v.GetString("offline.policy-column")
	}
	if v.IsSet("offline.status-column") {
		cfg.Offline.StatusColumn = v.GetString("offline.status-column")
	}
	if v.IsSet("offline.premium-column") {
		cfg.Offline.PremiumColumn = v.GetString("offline.premium-column")
	}
	if v.IsSet("offline.pending-labels") {
		cfg.Offline.PendingLabels = v.GetStringSlice("offline.pending-labels")
	}
	if err := applyCounterpartyOverrides(v, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyCounterpartyOverrides merges per-counterparty mapping overrides
// from the config file. Each entry maps a canonical field to one column
// (single), a "coalesce" list or a "concatenate" list.
func applyCounterpartyOverrides(v *viper.Viper, cfg *reconciler.Config) error {
	overrides := v.GetStringMap("counterparties")
	for name := range overrides {
		sub := v.Sub("counterparties." + name)
		if sub == nil {
			continue
		}
		cp := cfg.Counterparties[normalizeCounterpartyName(name)]
		if cp == nil {
			cp = &reconciler.CounterpartyConfig{
				Name:    normalizeCounterpartyName(name),
				Mapping: schema.MappingSpec{},
			}
			cfg.Counterparties[cp.Name] = cp
		}
		for field := range sub.GetStringMap("mapping") {
			key := "mapping." + field
			if cols := sub.GetStringSlice(key + ".coalesce"); len(cols) > 0 {
				cp.Mapping[field] = schema.Coalesce(cols...)
				continue
			}
			if cols := sub.GetStringSlice(key + ".concatenate"); len(cols) > 0 {
				cp.Mapping[field] = schema.Concatenate(cols...)
				continue
			}
			if col := sub.GetString(key); col != "" {
				cp.Mapping[field] = schema.Single(col)
				continue
			}
			return fmt.Errorf("counterparty %q, field %q: unsupported mapping override", name, field)
		}
		if variations := sub.GetStringSlice("name-variations"); len(variations) > 0 {
			cp.NameVariations = append(cp.NameVariations, variations...)
		}
	}
	return nil
}

func normalizeCounterpartyName(name string) string {
	return models.NormalizeKey(name)
}

// MatcherDefaults exposes the default matcher configuration for help text.
func MatcherDefaults() *matcher.Config { return matcher.DefaultConfig() }

// OfflineDefaults exposes the default offline table layout for help text.
func OfflineDefaults() *categorize.OfflineConfig { return categorize.DefaultOfflineConfig() }

// BuiltinCounterparties returns the full built-in counterparty catalog:
// extract column mappings, pre-match filters, explicit cancellation rules
// and the company-name variations used to attribute internal rows.
func BuiltinCounterparties() map[string]*reconciler.CounterpartyConfig {
	catalog := []*reconciler.CounterpartyConfig{
		{
			Name: "SHRIRAM",
			Mapping: schema.MappingSpec{
				models.FieldPolicyNumber:         schema.Single("S_POLICYNO"),
				models.FieldCustomerName:         schema.Single("S_INSUREDNAME"),
				models.FieldPolicyStartDate:      schema.Single("S_DOI"),
				models.FieldPolicyEndDate:        schema.Single("S_DOE"),
				models.FieldRegistrationNumber:   schema.Single("S_VEH_REG_NO"),
				models.FieldEngineNumber:         schema.Single("S_ENGNO"),
				models.FieldChassisNumber:        schema.Single("S_CHNO"),
				models.FieldTotalPremium:         schema.Single("S_NET"),
				models.FieldTPPremium:            schema.Single("S_TP_TOTAL"),
				models.FieldPreviousPolicyNumber: schema.Single("S_PREVIOUS_POL_NO"),
				models.FieldBrokerName:           schema.Single("S_SOURCENAME"),
				models.FieldVehicleMake:          schema.Single("S_MAKE_DESC"),
				models.FieldVehicleModel:         schema.Single("S_VEH_MODEL"),
				models.FieldFuelType:             schema.Single("S_VEHFUEL_DESC"),
				models.FieldGrossWeight:          schema.Single("S_GVW"),
				models.FieldSeatingCapacity:      schema.Single("S_VEH_SC"),
			},
			Filters: []filterpipe.Rule{
				{Field: "Category", Predicate: filterpipe.PredNotContains, Values: []string{"NON MOTOR"}, Description: "Keep only motor categories"},
				{Field: "S_ENDORSEMENT", Predicate: filterpipe.PredNotContains, Values: []string{"IDX"}, Description: "Remove endorsement records"},
				{Field: "S_ENDORSEMENT", Predicate: filterpipe.PredEquals, Values: []string{"0"}, Description: "Keep only base policies (S_ENDORSEMENT = 0)"},
				{Field: "S_ENDORSEMENTIDX", Predicate: filterpipe.PredEquals, Values: []string{"0"}, Description: "Only base policies (S_ENDORSEMENTIDX = 0)"},
			},
			NameVariations: []string{"Shriram General Insurance", "Shriram", "SGI"},
		},
		{
			Name: "RELIANCE",
			Mapping: schema.MappingSpec{
				models.FieldPolicyNumber:         schema.Single("PolicyNo"),
				models.FieldCustomerName:         schema.Single("CustomerName"),
				models.FieldPolicyStartDate:      schema.Single("PolicyStartDate"),
				models.FieldPolicyEndDate:        schema.Single("PolicyEndDate"),
				models.FieldRegistrationNumber:   schema.Single("VechileNo"),
				models.FieldEngineNumber:         schema.Single("EngineNo"),
				models.FieldChassisNumber:        schema.Single("ChassisNo"),
				models.FieldTotalPremium:         schema.Single("GrossPremium"),
				models.FieldTPPremium:            schema.Single("TpPremium"),
				models.FieldPreviousPolicyNumber: schema.Single("Previous Policy No"),
				models.FieldBrokerName:           schema.Single("IMDName"),
				models.FieldBrokerCode:           schema.Single("IMDCode"),
				models.FieldSumInsured:           schema.Single("SumInsured"),
				models.FieldVehicleMake:          schema.Single("Make"),
				models.FieldVehicleModel:         schema.Single("Model"),
				models.FieldFuelType:             schema.Single("FuelType"),
				models.FieldGrossWeight:          schema.Single("GVW"),
				models.FieldSeatingCapacity:      schema.Single("SeatingCapacity"),
			},
			Filters: []filterpipe.Rule{
				{Field: "IMDName", Predicate: filterpipe.PredNotContains, Values: []string{"GIRNAR INSURANCE BROKERS PVT LTD"}, Description: "Remove specific broker records"},
				{Field: "BusinessType", Predicate: filterpipe.PredNotContains, Values: []string{"Endorsement"}, Description: "Remove endorsement business type"},
				{Field: "PolicyStatus", Predicate: filterpipe.PredNotContains, Values: []string{"InActive"}, Description: "Remove inactive policies"},
			},
			NameVariations: []string{"Reliance General Insurance", "Reliance", "Reliance General Insurance Company Limited"},
		},
		{
			Name: "ROYAL",
			Mapping: schema.MappingSpec{
				models.FieldPolicyNumber:         schema.Single("Policy No"),
				models.FieldCustomerName:         schema.Single("Client Full Name"),
				models.FieldPolicyStartDate:      schema.Single("Inception Date"),
				models.FieldPolicyEndDate:        schema.Single("Expiry Date"),
				models.FieldRegistrationNumber:   schema.Single("Reg No"),
				models.FieldEngineNumber:         schema.Single("Engine No"),
				models.FieldChassisNumber:        schema.Single("Chasis No"),
				models.FieldTotalPremium:         schema.Single("Client Premium"),
				models.FieldTPPremium:            schema.Single("TP Premium"),
				models.FieldPreviousPolicyNumber: schema.Single("Previous Policy No"),
				models.FieldBrokerName:           schema.Single("Agent Name"),
				models.FieldBrokerCode:           schema.Single("Agent Code"),
				models.FieldVehicleMake:          schema.Single("Make"),
				models.FieldVehicleModel:         schema.Single("Mfr_Model_GWP"),
				models.FieldFuelType:             schema.Single("Fuel_Type"),
				models.FieldGrossWeight:          schema.Single("GVW_Ton"),
				models.FieldSeatingCapacity:      schema.Single("SeatingCapacity"),
			},
			Filters: []filterpipe.Rule{
				{Field: "Endorsement No", Predicate: filterpipe.PredEquals, Values: []string{"000"}, Description: "Only base policies (Endorsement No = 000)"},
				{Field: "Product", Predicate: filterpipe.PredNotContains, Values: []string{"Other than Motor Products"}, Description: "Keep only Motor products"},
			},
			NameVariations: []string{"Royal Sundaram General Insurance", "Royal Sundaram"},
		},
		{
			Name: "SBI",
			Mapping: schema.MappingSpec{
				models.FieldPolicyNumber:    schema.Coalesce("PolicyNo"),
				models.FieldCustomerName:    schema.Single("CustomerName"),
				models.FieldPolicyStartDate: schema.Single("PolicyStartDate"),
				models.FieldPolicyEndDate:   schema.Single("PolicyEndDate"),
				models.FieldTotalPremium:    schema.Coalesce("FinalPremium", "GWP LACS", "GWP Lacs", "Gross Written Premium"),
				models.FieldBrokerName:      schema.Coalesce("IMD name", "IMDName", "Channel_Name"),
				models.FieldBrokerCode:      schema.Single("IMDCode"),
				models.FieldVehicleMake:     schema.Single("MakeModel"),
				models.FieldVehicleModel:    schema.Coalesce("Product_Name", "ProductName"),
			},
			Filters: []filterpipe.Rule{
				{Field: "Transaction Type", Predicate: filterpipe.PredNotIn, Values: []string{"Refund Endorsement", "Policy Cancellation Endorsement", "Extra Endorsement", "Nil Endorsement"}, Description: "Remove endorsement and cancellation transactions"},
				{Field: "OF LOB Name", Predicate: filterpipe.PredNotContains, Values: []string{"Other than Motor"}, Description: "Keep only Motor LOB"},
			},
			Cancellation:   &matcher.CancellationRule{Column: "Transaction Type", Labels: []string{"Policy Cancellation Endorsement"}},
			NameVariations: []string{"SBI General Insurance", "SBI", "SBI General Insurance Company Limited"},
		},
		{
			Name: "ICICI",
			Mapping: schema.MappingSpec{
				models.FieldPolicyNumber:         schema.Single("POL_NUM_TXT"),
				models.FieldCustomerName:         schema.Single("CUSTOMER_NAME"),
				models.FieldPolicyStartDate:      schema.Single("POL_START_DATE"),
				models.FieldPolicyEndDate:        schema.Single("POL_END_DATE"),
				models.FieldRegistrationNumber:   schema.Single("MOTOR_REGISTRATION_NUM"),
				models.FieldEngineNumber:         schema.Single("VEH_ENGINENO"),
				models.FieldChassisNumber:        schema.Single("VEH_CHASSISNO"),
				models.FieldTotalPremium:         schema.Single("TOTAL_GROSS_PREMIUM"),
				models.FieldTPPremium:            schema.Single("MOTOR_TP_PREMIUM_AMT"),
				models.FieldPreviousPolicyNumber: schema.Single("XC_PREV_POL_NO"),
				models.FieldBrokerName:           schema.Single("AGENT_NAME"),
				models.FieldBrokerCode:           schema.Single("CHILD_ID"),
				models.FieldSumInsured:           schema.Single("POL_TOT_SUM_INSURED_AMT"),
				models.FieldVehicleMake:          schema.Single("MANUFACTURER_NAME"),
				models.FieldVehicleModel:         schema.Single("MODEL_NAME"),
				models.FieldFuelType:             schema.Single("XC_FUEL_TYPE"),
				models.FieldGrossWeight:          schema.Single("POL_GVW"),
				models.FieldSeatingCapacity:      schema.Single("XC_POL_SEATING_CAPACITY"),
			},
			Filters: []filterpipe.Rule{
				{Field: "ENDORSEMENT_TYPE", Predicate: filterpipe.PredNotIn, Values: []string{"ENDORSED", "CANCELLED"}, Description: "Remove endorsed and cancelled policies"},
				{Field: "PRODUCT_NAME", Predicate: filterpipe.PredNotContains, Values: []string{"Other than Motor Products"}, Description: "Keep only Motor products"},
				{Field: "POL_ISSUE_DATE", Predicate: filterpipe.PredCurrentMonth, Description: "Keep only current month policies"},
				{Field: "TOTAL_GROSS_PREMIUM", Predicate: filterpipe.PredPositive, Description: "Remove negative premium records"},
			},
			Cancellation:   &matcher.CancellationRule{Column: "ENDORSEMENT_TYPE", Labels: []string{"CANCELLED"}},
			NameVariations: []string{"ICICI Lombard", "ICICI Lombard General Insurance", "ICICI Lombard General Insurance Company Limited", "ICICI"},
		},
		{
			Name: "NATIONAL",
			Mapping: schema.MappingSpec{
				models.FieldPolicyNumber:       schema.Coalesce("Policy Number", "policy No"),
				models.FieldCustomerName:       schema.Single("Customer Name"),
				models.FieldPolicyStartDate:    schema.Single("Policy Effective Date"),
				models.FieldPolicyEndDate:      schema.Single("Policy Expiry Date"),
				models.FieldRegistrationNumber: schema.Single("Vehicle Registration Number"),
				models.FieldTotalPremium:       schema.Single("Premium"),
				models.FieldBrokerName:         schema.Single("POSP Name"),
				models.FieldBrokerCode:         schema.Single("POSP Code"),
				models.FieldVehicleMake:        schema.Single("Make"),
				models.FieldVehicleModel:       schema.Single("Model"),
				models.FieldFuelType:           schema.Single("Fuel Type"),
				models.FieldGrossWeight:        schema.Single("Gross Vehicle Weight"),
				models.FieldSeatingCapacity:    schema.Single("Seating Capacity"),
			},
			Filters: []filterpipe.Rule{
				{Field: "Business Type", Predicate: filterpipe.PredIn, Values: []string{"New Business", "Renewal"}, Description: "New Business and Renewal only (No Cancellation/Endorsement)"},
			},
			NameVariations: []string{"National Insurance Company Limited", "National Insurance", "National", "NIC"},
		},
		{
			Name: "DIGIT",
			Mapping: schema.MappingSpec{
				models.FieldPolicyNumber:         schema.Coalesce("POLICY_NUMBER", "Policy_Number"),
				models.FieldCustomerName:         schema.Single("INSURED_PERSON"),
				models.FieldPolicyStartDate:      schema.Single("RISK_INC_DATE"),
				models.FieldPolicyEndDate:        schema.Single("RISK_EXP_DATE"),
				models.FieldRegistrationNumber:   schema.Single("VEH_REG_NO"),
				models.FieldEngineNumber:         schema.Single("ENGINE_NO"),
				models.FieldChassisNumber:        schema.Single("CHASSIS_NO"),
				models.FieldTotalPremium:         schema.Single("GROSS_PREMIUM"),
				models.FieldTPPremium:            schema.Single("TP_PREMIUM"),
				models.FieldPreviousPolicyNumber: schema.Single("PREV_POLICY_NO"),
				models.FieldBrokerName:           schema.Single("IMD_NAME"),
				models.FieldSumInsured:           schema.Single("SUM_INSURED"),
				models.FieldVehicleMake:          schema.Single("VEHICLE_MAKE"),
				models.FieldVehicleModel:         schema.Single("VEHICLE_MODEL"),
				models.FieldFuelType:             schema.Single("FUEL_TYPE"),
				models.FieldGrossWeight:          schema.Single("VEH_GVW"),
				models.FieldSeatingCapacity:      schema.Single("VEH_SEATING"),
			},
			Filters: []filterpipe.Rule{
				{Field: "ENDORSEMENT_IND", Predicate: filterpipe.PredEquals, Values: []string{"G01"}, Description: "ENDORSEMENT_IND = G01 (base policies only)"},
				{Field: "STATUS", Predicate: filterpipe.PredEquals, Values: []string{"A"}, Description: "STATUS = A (active policies only)"},
				{Field: "STATUS", Predicate: filterpipe.PredNotEquals, Values: []string{"S"}, Description: "Remove cancelled policies (POLICY_STATUS = S)"},
				{Field: "PRODUCT_LOB", Predicate: filterpipe.PredNotContains, Values: []string{"Other than Motor Lob"}, Description: "Keep only Motor LOB"},
			},
			Cancellation:   &matcher.CancellationRule{Column: "STATUS", Labels: []string{"S"}},
			NameVariations: []string{"Digit General Insurance Limited", "Digit Insurance", "Digit", "Digit General Insurance"},
		},
		{
			Name: "MAGMA",
			Mapping: schema.MappingSpec{
				models.FieldPolicyNumber:         schema.Single("PolicyNo"),
				models.FieldCustomerName:         schema.Single("CustomerName"),
				models.FieldPolicyStartDate:      schema.Single("RiskStartDate"),
				models.FieldPolicyEndDate:        schema.Single("RiskEndDate"),
				models.FieldRegistrationNumber:   schema.Single("RegistrationNumber"),
				models.FieldEngineNumber:         schema.Single("EngineNumber"),
				models.FieldChassisNumber:        schema.Single("ChassisNumber"),
				models.FieldTotalPremium:         schema.Single("PremiumAmount"),
				models.FieldPreviousPolicyNumber: schema.Single("PreviousYearPolicyNumber"),
				models.FieldBrokerName:           schema.Single("AgentName"),
				models.FieldBrokerCode:           schema.Single("AgentCode"),
				models.FieldVehicleModel:         schema.Single("ProductDesc"),
			},
			Filters: []filterpipe.Rule{
				{Field: "LOBCode", Predicate: filterpipe.PredNotContains, Values: []string{"Other than Motor"}, Description: "Keep only Motor LOB"},
			},
			NameVariations: []string{"Magma HDI General Insurance Company Ltd", "Magma HDI", "Magma", "Magma HDI General Insurance"},
		},
		{
			Name: "UNIVERSAL",
			Mapping: schema.MappingSpec{
				models.FieldPolicyNumber:         schema.Coalesce("POLICY NO CHAR", "USGIpos Policy Number", "POLICY NO"),
				models.FieldCustomerName:         schema.Single("INSURED NAME"),
				models.FieldPolicyStartDate:      schema.Single("START DATE"),
				models.FieldPolicyEndDate:        schema.Single("EXPIRY DATE"),
				models.FieldRegistrationNumber:   schema.Single("MTOR Registration No"),
				models.FieldTotalPremium:         schema.Single("GROSS PREMIUM"),
				models.FieldTPPremium:            schema.Single("TOTAL TP PREMIUM"),
				models.FieldPreviousPolicyNumber: schema.Single("Previous Yr Policy"),
				models.FieldBrokerName:           schema.Single("INTERMEDIARY"),
				models.FieldBrokerCode:           schema.Single("INTERMEDIARY CODE"),
				models.FieldSumInsured:           schema.Single("TOTAL SUM INSURED"),
				models.FieldVehicleMake:          schema.Single("MAKE"),
				models.FieldVehicleModel:         schema.Single("MODEL"),
				models.FieldGrossWeight:          schema.Single("Gvw"),
				models.FieldSeatingCapacity:      schema.Single("Vehicle Seating Capacity"),
			},
			Filters: []filterpipe.Rule{
				{Field: "ENDORSMENT_NO", Predicate: filterpipe.PredEquals, Values: []string{"0"}, Description: "Only base policies (Endorsement = 0)"},
				{Field: "LINE_OF_BUSINESS", Predicate: filterpipe.PredNotContains, Values: []string{"Other than Motor"}, Description: "Keep only Motor LOB"},
			},
			NameVariations: []string{"Universal Sompo", "Sompo", "Universal Sompo General Insurance", "Universal Sompo General Insurance Company Limited"},
		},
		{
			Name: "UNITED",
			Mapping: schema.MappingSpec{
				models.FieldPolicyNumber:       schema.Single("Policy Number"),
				models.FieldCustomerName:       schema.Single("Insured Name"),
				models.FieldPolicyStartDate:    schema.Single("Effect Date"),
				models.FieldPolicyEndDate:      schema.Single("Expiry Date"),
				models.FieldRegistrationNumber: schema.Single("Registration Number"),
				models.FieldEngineNumber:       schema.Single("Engine Number"),
				models.FieldChassisNumber:      schema.Single("Chassis Number"),
				models.FieldTotalPremium:       schema.Single("company_wise_own_share_premium_total"),
				models.FieldTPPremium:          schema.Single("TP Premium"),
				models.FieldBrokerCode:         schema.Single("Agent/Br.Cd"),
				models.FieldSumInsured:         schema.Single("Sum Insured"),
				models.FieldGrossWeight:        schema.Single("NUM_GVW"),
			},
			Filters: []filterpipe.Rule{
				{Field: "Endorsement Number", Predicate: filterpipe.PredEquals, Values: []string{"0"}, Description: "Only Base Policies (Endorsement Number = 0)"},
				{Field: "Effect Date", Predicate: filterpipe.PredNotOlderThan, Reference: "Issue Date", Description: "Remove records where Effect Date is older than Issue Date"},
				{Field: "Department", Predicate: filterpipe.PredNotContains, Values: []string{"Other than Motor"}, Description: "Keep only Motor department"},
				{Field: "Total", Predicate: filterpipe.PredPositive, Description: "Remove negative premium records"},
			},
			NameVariations: []string{"United India Insurance Company Limited", "UIIC", "United India Insurance", "United India", "United"},
		},
		{
			Name: "BAJAJ",
			Mapping: schema.MappingSpec{
				models.FieldPolicyNumber:         schema.Coalesce("PolicyNo", "P Policy Number"),
				models.FieldCustomerName:         schema.Concatenate("CustomerName", "Partner Desc"),
				models.FieldPolicyStartDate:      schema.Single("Risk Start Date"),
				models.FieldPolicyEndDate:        schema.Single("Risk End Date"),
				models.FieldRegistrationNumber:   schema.Single("RegistrationNumber"),
				models.FieldEngineNumber:         schema.Single("EngineNumber"),
				models.FieldChassisNumber:        schema.Single("ChassisNumber"),
				models.FieldTotalPremium:         schema.Coalesce("R Rnwd Gross Prem", "Gross Premium"),
				models.FieldTPPremium:            schema.Single("R Rnwd Tp Prem"),
				models.FieldPreviousPolicyNumber: schema.Single("Previous Year Policy Number"),
				models.FieldBrokerName:           schema.Single("AgentName"),
				models.FieldBrokerCode:           schema.Single("AgentCode"),
				models.FieldSumInsured:           schema.Single("R Rnwd Sum Insured"),
				models.FieldVehicleModel:         schema.Single("Product Desc"),
			},
			NameVariations: []string{"Bajaj Allianz", "Bajaj Allianz General Insurance", "Bajaj Allianz General Insurance Company Limited", "Bajaj"},
		},
		{
			Name: "CHOLA",
			Mapping: schema.MappingSpec{
				models.FieldPolicyNumber:         schema.Single("Policy No"),
				models.FieldCustomerName:         schema.Single("Customer name"),
				models.FieldPolicyStartDate:      schema.Single("RSD"),
				models.FieldPolicyEndDate:        schema.Single("RED"),
				models.FieldRegistrationNumber:   schema.Single("Regist_NO"),
				models.FieldEngineNumber:         schema.Single("Engine No"),
				models.FieldChassisNumber:        schema.Single("Chassis No"),
				models.FieldTotalPremium:         schema.Single("Gross Premium"),
				models.FieldTPPremium:            schema.Single("Third Party liability"),
				models.FieldPreviousPolicyNumber: schema.Single("PREVIOUS_POLICY_NUMBER"),
				models.FieldBrokerName:           schema.Single("Agent Name"),
				models.FieldBrokerCode:           schema.Single("Agent Code"),
				models.FieldSumInsured:           schema.Single("Total IDV"),
				models.FieldVehicleMake:          schema.Single("Make"),
				models.FieldVehicleModel:         schema.Single("Model"),
				models.FieldFuelType:             schema.Single("Fuel Type"),
				models.FieldGrossWeight:          schema.Single("GROSS_VEHICLE_WEIGHT"),
				models.FieldSeatingCapacity:      schema.Single("TOTAL_SEATING_CAPACITY"),
			},
			Filters: []filterpipe.Rule{
				{Field: "LOB", Predicate: filterpipe.PredNotContains, Values: []string{"Other than Motor"}, Description: "Keep only Motor LOB records"},
				{Field: "POLICY_CASE", Predicate: filterpipe.PredNotIn, Values: []string{"Endorsement", "CANCEL"}, Description: "Remove Endorsement and Cancellation records"},
			},
			Cancellation:   &matcher.CancellationRule{Column: "POLICY_CASE", Labels: []string{"CANCEL"}},
			NameVariations: []string{"Cholamandalam MS General Insurance Company Ltd", "Cholamandalam MS General Insurance", "Cholamandalam MS", "Chola"},
		},
		{
			Name: "HDFC",
			Mapping: schema.MappingSpec{
				models.FieldPolicyNumber:         schema.Single("Policy No"),
				models.FieldCustomerName:         schema.Single("Customer Name"),
				models.FieldPolicyStartDate:      schema.Single("Start Date"),
				models.FieldPolicyEndDate:        schema.Single("End Date"),
				models.FieldRegistrationNumber:   schema.Single("POL_MOT_VEH_REGISTRATION_NUM"),
				models.FieldEngineNumber:         schema.Single("ENGINE NUM"),
				models.FieldChassisNumber:        schema.Single("CHASSIS NUM"),
				models.FieldTotalPremium:         schema.Single("Total GWP"),
				models.FieldTPPremium:            schema.Single("TP"),
				models.FieldPreviousPolicyNumber: schema.Single("Previous Policy No"),
				models.FieldBrokerName:           schema.Single("Agent Name"),
				models.FieldBrokerCode:           schema.Single("Agent Code"),
				models.FieldSumInsured:           schema.Single("Sum Insured"),
				models.FieldVehicleMake:          schema.Single("POL_MOT_MANUFACTURER_NAME"),
				models.FieldVehicleModel:         schema.Single("POL_MOT_MODEL_NAME"),
				models.FieldFuelType:             schema.Single("POL_FUEL_TYPE"),
				models.FieldGrossWeight:          schema.Single("POL_GROSS_VEH_WT"),
			},
			Filters: []filterpipe.Rule{
				{Field: "Endorsement No", Predicate: filterpipe.PredEquals, Values: []string{"000"}, Description: "Only base policies (Endorsement No = 000)"},
				{Field: "Finance LOB", Predicate: filterpipe.PredNotContains, Values: []string{"Other than Motor"}, Description: "Keep only Motor LOB"},
				{Field: "Pol Issue Date", Predicate: filterpipe.PredCurrentMonth, Description: "Keep only current month policies"},
				{Field: "Endorsement Type", Predicate: filterpipe.PredNotContains, Values: []string{"Endorsement"}, Description: "Remove endorsement types"},
			},
			NameVariations: []string{"HDFC ERGO", "HDFC Ergo General Insurance", "HDFC Ergo", "HDFC Ergo General Insurance Company Limited"},
		},
		{
			Name: "IFFCO",
			Mapping: schema.MappingSpec{
				models.FieldPolicyNumber:         schema.Single("P400 policy"),
				models.FieldCustomerName:         schema.Concatenate("First Name", "Last Name"),
				models.FieldPolicyStartDate:      schema.Single("Inceptiondate"),
				models.FieldPolicyEndDate:        schema.Single("Expirydate"),
				models.FieldRegistrationNumber:   schema.Single("Registration No"),
				models.FieldTotalPremium:         schema.Single("Total Premium after discount/loading"),
				models.FieldTPPremium:            schema.Single("TP Gross Premium"),
				models.FieldPreviousPolicyNumber: schema.Single("PreviousInsurerPolicy Number"),
				models.FieldBrokerCode:           schema.Single("AgentNo"),
				models.FieldSumInsured:           schema.Single("Total Sum Insured"),
				models.FieldVehicleMake:          schema.Single("Make"),
				models.FieldVehicleModel:         schema.Single("Model"),
				models.FieldFuelType:             schema.Single("Fuel Type"),
				models.FieldGrossWeight:          schema.Single("GVW"),
				models.FieldSeatingCapacity:      schema.Single("Carrying Capacity"),
			},
			Filters: []filterpipe.Rule{
				{Field: "Status", Predicate: filterpipe.PredNotContains, Values: []string{"Cancelled Policy"}, Description: "Remove cancelled policies"},
				{Field: "Product", Predicate: filterpipe.PredNotContains, Values: []string{"Other than motor codes"}, Description: "Keep only motor products"},
			},
			Cancellation:   &matcher.CancellationRule{Column: "Status", Labels: []string{"Cancelled Policy"}},
			NameVariations: []string{"IFFCO Tokio", "IFFCO Tokio General Insurance", "IFFCO Tokio General Insurance Company Limited", "IFFCO"},
		},
		{
			Name: "KOTAK",
			Mapping: schema.MappingSpec{
				models.FieldPolicyNumber:       schema.Single("POLICY NO"),
				models.FieldCustomerName:       schema.Single("CUSTOMER NAME"),
				models.FieldPolicyStartDate:    schema.Single("POLICY INCEPTION DATE"),
				models.FieldPolicyEndDate:      schema.Single("POLICY EXPIRY DATE"),
				models.FieldRegistrationNumber: schema.Single("Registration Number"),
				models.FieldEngineNumber:       schema.Single("Engine Number"),
				models.FieldChassisNumber:      schema.Single("Chassis Number"),
				models.FieldTotalPremium:       schema.Single("GWP"),
				models.FieldTPPremium:          schema.Single("ALL OTHER TP COVER PREMIUM"),
				models.FieldBrokerName:         schema.Single("IMD NAME"),
				models.FieldBrokerCode:         schema.Single("IMD CODE"),
				models.FieldSumInsured:         schema.Single("SYSTEMIDV"),
				models.FieldVehicleMake:        schema.Single("VehicleMake"),
				models.FieldVehicleModel:       schema.Single("VehicleModel"),
				models.FieldFuelType:           schema.Single("FuelType"),
				models.FieldGrossWeight:        schema.Single("VehicleWeight"),
			},
			Filters: []filterpipe.Rule{
				{Field: "TRANSACTION TYPE", Predicate: filterpipe.PredNotIn, Values: []string{"ENDORSEMENT", "POLICY", "CANCELLATION", "ENDORSEMENTPOLICY"}, Description: "Remove endorsement and cancellation transactions"},
				{Field: "LOB NAME", Predicate: filterpipe.PredNotContains, Values: []string{"Other than MOTOR"}, Description: "Keep only Motor LOB"},
			},
			Cancellation:   &matcher.CancellationRule{Column: "TRANSACTION TYPE", Labels: []string{"CANCELLATION"}},
			NameVariations: []string{"Kotak Mahindra General Insurance Limited", "Kotak General Insurance", "Kotak"},
		},
		{
			Name: "TATA",
			Mapping: schema.MappingSpec{
				models.FieldPolicyNumber:       schema.Single("policy_no"),
				models.FieldCustomerName:       schema.Single("clientname"),
				models.FieldPolicyStartDate:    schema.Single("pol_incept_date"),
				models.FieldPolicyEndDate:      schema.Single("pol_exp_date"),
				models.FieldRegistrationNumber: schema.Single("registration_no"),
				models.FieldEngineNumber:       schema.Single("veh_engine_no"),
				models.FieldChassisNumber:      schema.Single("veh_chassis_no"),
				models.FieldTotalPremium:       schema.Single("total_premium"),
				models.FieldTPPremium:          schema.Single("basictp"),
				models.FieldBrokerName:         schema.Single("producername"),
				models.FieldBrokerCode:         schema.Single("producer_cd"),
				models.FieldSumInsured:         schema.Single("vehicleidv"),
				models.FieldVehicleMake:        schema.Single("veh_make"),
				models.FieldVehicleModel:       schema.Single("veh_model"),
				models.FieldFuelType:           schema.Single("fuel_type"),
				models.FieldGrossWeight:        schema.Single("veh_gr_wgt_cnt"),
				models.FieldSeatingCapacity:    schema.Single("seat_cap_cnt"),
			},
			Filters: []filterpipe.Rule{
				{Field: "record_type_desc", Predicate: filterpipe.PredNotIn, Values: []string{"ENDORSEMENT", "CANCELLATION"}, Description: "Remove endorsement and cancellation records"},
				{Field: "product_name", Predicate: filterpipe.PredNotContains, Values: []string{"Other than Motor Products"}, Description: "Keep only Motor products"},
			},
			Cancellation:   &matcher.CancellationRule{Column: "record_type_desc", Labels: []string{"CANCELLATION"}},
			NameVariations: []string{"Tata AIG", "Tata AIG General Insurance", "Tata AIG General Insurance Company Limited", "Tata"},
		},
		{
			Name: "ZUNO",
			Mapping: schema.MappingSpec{
				models.FieldPolicyNumber:         schema.Single("Policy_Number"),
				models.FieldCustomerName:         schema.Single("Policy_Holder_Name"),
				models.FieldPolicyStartDate:      schema.Single("Policy_Start_Date"),
				models.FieldPolicyEndDate:        schema.Single("Policy_End_Date"),
				models.FieldRegistrationNumber:   schema.Single("Registration No"),
				models.FieldEngineNumber:         schema.Single("Engine No"),
				models.FieldChassisNumber:        schema.Single("chasis No"),
				models.FieldTotalPremium:         schema.Single("Gross_Premium_Total"),
				models.FieldTPPremium:            schema.Single("Motor TP Premium"),
				models.FieldPreviousPolicyNumber: schema.Single("Previous_Policy_No"),
				models.FieldBrokerName:           schema.Single("Intermediary_Name"),
				models.FieldBrokerCode:           schema.Single("Intermediary_Code"),
				models.FieldSumInsured:           schema.Single("NUM_IDV"),
				models.FieldVehicleMake:          schema.Single("Make Code"),
				models.FieldVehicleModel:         schema.Single("Model Code"),
				models.FieldFuelType:             schema.Single("Type of Fuel"),
				models.FieldGrossWeight:          schema.Single("GVW"),
				models.FieldSeatingCapacity:      schema.Single("Capacity Type"),
			},
			Filters: []filterpipe.Rule{
				{Field: "Policy_Type", Predicate: filterpipe.PredNotIn, Values: []string{"ENDORSEMENT", "CANCELLATION"}, Description: "Remove endorsement and cancellation policies"},
				{Field: "Line_Of_Business", Predicate: filterpipe.PredNotContains, Values: []string{"Other than Motor"}, Description: "Keep only Motor LOB"},
			},
			Cancellation:   &matcher.CancellationRule{Column: "Policy_Type", Labels: []string{"CANCELLATION"}},
			NameVariations: []string{"Zuno General Insurance", "Zuno Insurance", "Zuno"},
		},
		{
			Name: "LIBERTY",
			Mapping: schema.MappingSpec{
				models.FieldPolicyNumber:         schema.Single("Policy No."),
				models.FieldCustomerName:         schema.Single("Insured Name"),
				models.FieldPolicyStartDate:      schema.Single("Policy Start Date"),
				models.FieldPolicyEndDate:        schema.Single("Policy End Date"),
				models.FieldRegistrationNumber:   schema.Single("Veh Reg No"),
				models.FieldEngineNumber:         schema.Single("Engine NO"),
				models.FieldChassisNumber:        schema.Single("Chassis NO"),
				models.FieldTotalPremium:         schema.Single("Net Premium"),
				models.FieldTPPremium:            schema.Single("Net TP Premium / War & SRCC"),
				models.FieldPreviousPolicyNumber: schema.Single("Previous Policy No."),
				models.FieldBrokerName:           schema.Single("Agent/ Broker Name"),
				models.FieldBrokerCode:           schema.Single("Agent/ Broker Code"),
				models.FieldSumInsured:           schema.Single("Sum Insured"),
				models.FieldVehicleMake:          schema.Single("Make Name"),
				models.FieldVehicleModel:         schema.Single("Model Name"),
				models.FieldFuelType:             schema.Single("Fuel Type"),
			},
			Filters: []filterpipe.Rule{
				{Field: "lob name", Predicate: filterpipe.PredNotContains, Values: []string{"Other than Motor"}, Description: "Keep only Motor LOB"},
				{Field: "transaction type", Predicate: filterpipe.PredNotIn, Values: []string{"ENDORSEMENT", "CANCELLATION"}, Description: "Remove endorsement and cancellation transactions"},
			},
			Cancellation:   &matcher.CancellationRule{Column: "transaction type", Labels: []string{"CANCELLATION"}},
			NameVariations: []string{"Liberty General Insurance Company Limited", "Liberty Insurance", "Liberty", "Liberty Videocon General Insurance"},
		},
		{
			Name: "ORIENTAL",
			Mapping: schema.MappingSpec{
				models.FieldPolicyNumber: schema.Single("POLICY NO"),
				models.FieldTotalPremium: schema.Single("PREMIUM"),
			},
			Filters: []filterpipe.Rule{
				{Field: "POLICY NO", Predicate: filterpipe.PredNotNull, Description: "Remove records with null policy numbers"},
			},
			NameVariations: []string{"Oriental Insurance", "Oriental"},
		},
	}

	out := make(map[string]*reconciler.CounterpartyConfig, len(catalog))
	for _, cp := range catalog {
		out[cp.Name] = cp
	}
	return out
}

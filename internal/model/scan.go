package model

import (
	"time"
)

// StatusCategory is the operational classification of a raw carrier status code.
type StatusCategory string

const (
	CategoryDelivered     StatusCategory = "Delivered"
	CategoryOFD           StatusCategory = "OFD Scans"
	CategoryReturn        StatusCategory = "Return"
	CategoryScansort      StatusCategory = "Scansort"
	CategoryLostInTransit StatusCategory = "Lost in Transit"
	CategoryPickup        StatusCategory = "Pickup"
	CategoryAJTM          StatusCategory = "AJTM"
	CategoryManifested    StatusCategory = "Manifested"
	CategoryOther         StatusCategory = "Other"
)

// AllCategories returns every known status category, catch-all last.
func AllCategories() []StatusCategory {
	return []StatusCategory{
		CategoryDelivered,
		CategoryOFD,
		CategoryReturn,
		CategoryScansort,
		CategoryLostInTransit,
		CategoryPickup,
		CategoryAJTM,
		CategoryManifested,
		CategoryOther,
	}
}

// ServiceTier is the billing category derived from a route code.
type ServiceTier string

const (
	TierSameDay  ServiceTier = "Same Day"
	TierNextDay  ServiceTier = "Next Day"
	TierMontreal ServiceTier = "Montreal"
	TierOther    ServiceTier = "Other"
)

// ScanEvent is one carrier status update for one item at one point in time.
// Events are immutable once ingested; the derived fields (Category, FullAddress,
// ScanDate, ScanTime) are set exactly once during pipeline preparation.
type ScanEvent struct {
	ItemID         string `json:"item_id"`
	TrackingNumber string `json:"tracking_number"`
	BillToAccount  string `json:"bill_to_account"`
	ClientName     string `json:"client_name"`

	StatusCode string `json:"status_code"`
	RouteCode  string `json:"route_code"`
	DriverName string `json:"driver_name"`

	ScanTimestamp time.Time `json:"scan_timestamp"`
	ScanDate      string    `json:"scan_date"` // 2006-01-02
	ScanTime      string    `json:"scan_time"` // 15:04:05

	ShipToName       string `json:"ship_to_name"`
	ShipToAddress    string `json:"ship_to_address"`
	ShipToAddress2   string `json:"ship_to_address_2"`
	ShipToCity       string `json:"ship_to_city"`
	ShipToProvince   string `json:"ship_to_province"`
	ShipToPostalCode string `json:"ship_to_postal_code"`
	ShipToCountry    string `json:"ship_to_country"`

	DeliveryAddress    string `json:"delivery_address"`
	DeliveryCity       string `json:"delivery_city"`
	DeliveryProvince   string `json:"delivery_province"`
	DeliveryPostalCode string `json:"delivery_postal_code"`
	DeliveryCountry    string `json:"delivery_country"`

	// Derived during preparation.
	Category    StatusCategory `json:"status_category"`
	FullAddress string         `json:"full_address"`
}

// SetTimestamp stores the scan timestamp and derives the date-only and
// time-only components used by the grouping stages.
func (e *ScanEvent) SetTimestamp(t time.Time) {
	e.ScanTimestamp = t
	e.ScanDate = t.Format("2006-01-02")
	e.ScanTime = t.Format("15:04:05")
}

// RunKey identifies one route-run: the work done by one driver on one route
// on one date.
type RunKey struct {
	Date   string `json:"date"`
	Driver string `json:"driver"`
	Route  string `json:"route"`
}

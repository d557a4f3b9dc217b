// Package presenter projects domain values onto the wire contract.
package presenter

import (
	"math"

	"github.com/99minutos/shipment-tracker/internal/core/domain"
	"github.com/99minutos/shipment-tracker/internal/core/ports"
	"github.com/99minutos/shipment-tracker/pkg/wire"
)

func User(u *domain.User) wire.User {
	return wire.User{
		ID:        u.ID,
		Email:     u.Email,
		Role:      u.Role,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.Phone,
	}
}

func Shipment(s *domain.Shipment) wire.Shipment {
	return wire.Shipment{
		ID:                       s.ID,
		TrackingNumber:           s.TrackingNumber,
		UserID:                   s.UserID,
		Weight:                   s.Weight,
		Length:                   s.Dimensions.Length,
		Width:                    s.Dimensions.Width,
		Height:                   s.Dimensions.Height,
		ProductType:              s.ProductType,
		RecipientName:            s.Recipient.Name,
		RecipientPhone:           s.Recipient.Phone,
		OriginFormattedAddress:   s.Origin.FormattedAddress,
		OriginPlaceID:            s.Origin.PlaceID,
		OriginLatitude:           s.Origin.Coordinates.Lat,
		OriginLongitude:          s.Origin.Coordinates.Lng,
		DestinationFormattedAddr: s.Destination.FormattedAddress,
		DestinationPlaceID:       s.Destination.PlaceID,
		DestinationLatitude:      s.Destination.Coordinates.Lat,
		DestinationLongitude:     s.Destination.Coordinates.Lng,
		StartDateTime:            s.StartAt.UTC(),
		DeliveryDateTime:         s.DeliveryAt.UTC(),
		WindowDeliveryTime:       s.DeliveryWindow,
		AdditionalDetails:        s.AdditionalDetails,
		Status:                   string(s.Status),
		CarrierID:                s.CarrierID,
		RouteID:                  s.RouteID,
		DeliveredAt:              s.DeliveredAt,
		CreatedAt:                s.CreatedAt.UTC(),
		UpdatedAt:                s.UpdatedAt.UTC(),
	}
}

func History(e *domain.HistoryEvent) wire.History {
	return wire.History{
		ID:                       e.ID,
		ShipmentID:               e.ShipmentID,
		Status:                   string(e.Status),
		Notes:                    e.Notes,
		LocationLatitude:         e.Latitude,
		LocationLongitude:        e.Longitude,
		LocationPlaceID:          e.PlaceID,
		LocationFormattedAddress: e.FormattedAddress,
		CreatedAt:                e.CreatedAt.UTC(),
	}
}

func ShipmentWithHistory(d *ports.ShipmentWithHistory) wire.ShipmentWithHistory {
	history := make([]wire.History, 0, len(d.History))
	for _, e := range d.History {
		history = append(history, History(e))
	}
	return wire.ShipmentWithHistory{Shipment: Shipment(d.Shipment), History: history}
}

func Carrier(c *domain.Carrier) wire.Carrier {
	return wire.Carrier{
		ID:                 c.ID,
		UserID:             c.UserID,
		VehicleType:        c.VehicleType,
		VehicleCapacity:    c.VehicleCapacity,
		VehiclePlateNumber: c.VehiclePlateNumber,
		IsAvailable:        c.IsAvailable,
		CreatedAt:          c.CreatedAt.UTC(),
		UpdatedAt:          c.UpdatedAt.UTC(),
	}
}

func Route(r *domain.Route) wire.Route {
	return wire.Route{
		ID:                       r.ID,
		Name:                     r.Name,
		OriginFormattedAddress:   r.Origin.FormattedAddress,
		OriginPlaceID:            r.Origin.PlaceID,
		OriginLatitude:           r.Origin.Coordinates.Lat,
		OriginLongitude:          r.Origin.Coordinates.Lng,
		DestinationFormattedAddr: r.Destination.FormattedAddress,
		DestinationPlaceID:       r.Destination.PlaceID,
		DestinationLatitude:      r.Destination.Coordinates.Lat,
		DestinationLongitude:     r.Destination.Coordinates.Lng,
		IsActive:                 r.IsActive,
		CreatedAt:                r.CreatedAt.UTC(),
		UpdatedAt:                r.UpdatedAt.UTC(),
	}
}

// Page maps a service page with fn.
func Page[D, W any](res *ports.ListResult[D], fn func(D) W) wire.Page[W] {
	items := make([]W, 0, len(res.Items))
	for _, it := range res.Items {
		items = append(items, fn(it))
	}
	return wire.Page[W]{
		Items:      items,
		Total:      res.Total,
		Page:       res.Page,
		Limit:      res.Limit,
		TotalPages: res.Pages,
	}
}

// Metrics converts rates to percentages and rounds to two decimals.
func Metrics(m *domain.DashboardMetrics) wire.DashboardMetrics {
	out := wire.DashboardMetrics{
		CarrierPerformance: make([]wire.CarrierPerformance, 0, len(m.CarrierPerformance)),
		TimelineMetrics:    make([]wire.TimelineMetric, 0, len(m.Timeline)),
		TopCarriers:        make([]wire.TopCarrier, 0, len(m.TopCarriers)),
	}
	for _, p := range m.CarrierPerformance {
		out.CarrierPerformance = append(out.CarrierPerformance, wire.CarrierPerformance{
			CarrierID:          p.CarrierID,
			CarrierName:        p.CarrierName,
			AvgDeliveryTime:    round2(p.AvgDeliveryHours),
			CompletedShipments: p.CompletedShipments,
			OnTimeDeliveries:   p.OnTimeDeliveries,
		})
	}
	for _, t := range m.Timeline {
		out.TimelineMetrics = append(out.TimelineMetrics, wire.TimelineMetric{
			Date:      t.Date,
			Pending:   t.Pending,
			InTransit: t.InTransit,
			Completed: t.Completed,
		})
	}
	for _, c := range m.TopCarriers {
		out.TopCarriers = append(out.TopCarriers, wire.TopCarrier{
			CarrierID:      c.CarrierID,
			CarrierName:    c.CarrierName,
			TotalShipments: c.TotalShipments,
			SuccessRate:    round2(c.SuccessRate * 100),
		})
	}
	return out
}

// Notification builds the message-channel payload.
func Notification(n *domain.Notification) wire.Notification {
	out := wire.Notification{Type: string(n.Kind), Message: n.Message}
	if n.Shipment != nil || n.ShipmentID != "" || n.NewStatus != "" {
		data := &wire.NotificationData{ShipmentID: n.ShipmentID, NewStatus: string(n.NewStatus)}
		if n.Shipment != nil {
			s := Shipment(n.Shipment)
			data.Shipment = &s
			if data.ShipmentID == "" {
				data.ShipmentID = n.Shipment.ID
			}
		}
		out.Data = data
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

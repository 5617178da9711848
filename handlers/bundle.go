package handlers

// HandlerBundle groups all endpoint handlers for route registration.
type HandlerBundle struct {
	Units    *UnitHandler
	Bookings *BookingHandler
	Feeds    *FeedHandler
	Pricing  *PricingHandler
	Health   *HealthHandler
}

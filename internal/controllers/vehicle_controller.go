package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"gowheels/internal/geo"
	"gowheels/internal/models"
	"gowheels/internal/store"
)

var requiredVehicleFields = []string{
	"name", "type", "imageUrl", "seats", "transmission", "fuelType", "pricePerDay", "locationAddress",
}

// vehicleFields validates a vehicle body and maps it onto column values.
// Only keys present in the body are returned.
func vehicleFields(p payload) (map[string]interface{}, *apiError) {
	fields := map[string]interface{}{}

	for key, column := range map[string]string{
		"name":            "name",
		"type":            "type",
		"imageUrl":        "image_url",
		"transmission":    "transmission",
		"fuelType":        "fuel_type",
		"locationAddress": "location_address",
	} {
		if !p.has(key) {
			continue
		}
		s, ok := p.str(key)
		if !ok || s == "" {
			return nil, badRequest(key+" must be a non-empty string", "INVALID_"+strings.ToUpper(camelToSnake(key)))
		}
		fields[column] = s
	}

	if p.has("cancellationPolicy") {
		s, ok := p.optStr("cancellationPolicy")
		if !ok {
			return nil, badRequest("cancellationPolicy must be a string", "INVALID_CANCELLATION_POLICY")
		}
		fields["cancellation_policy"] = s
	}

	if p.has("seats") {
		n, ok := p.integer("seats")
		if !ok || n <= 0 {
			return nil, badRequest("Seats must be a positive number", "INVALID_SEATS")
		}
		fields["seats"] = n
	}
	if p.has("doors") {
		if p["doors"] == nil {
			fields["doors"] = nil
		} else if n, ok := p.integer("doors"); ok && n > 0 {
			fields["doors"] = n
		} else {
			return nil, badRequest("Doors must be a positive number", "INVALID_DOORS")
		}
	}
	if p.has("reviewCount") {
		n, ok := p.integer("reviewCount")
		if !ok || n < 0 {
			return nil, badRequest("reviewCount must be a non-negative number", "INVALID_REVIEW_COUNT")
		}
		fields["review_count"] = n
	}

	if p.has("pricePerDay") {
		f, ok := p.number("pricePerDay")
		if !ok || f <= 0 {
			return nil, badRequest("pricePerDay must be a positive number", "INVALID_PRICE")
		}
		fields["price_per_day"] = f
	}
	if p.has("pricePerHour") {
		if p["pricePerHour"] == nil {
			fields["price_per_hour"] = nil
		} else if f, ok := p.number("pricePerHour"); ok && f > 0 {
			fields["price_per_hour"] = f
		} else {
			return nil, badRequest("pricePerHour must be a positive number", "INVALID_PRICE")
		}
	}
	if p.has("rating") {
		f, ok := p.number("rating")
		if !ok || f < 0 || f > 5 {
			return nil, badRequest("rating must be between 0 and 5", "INVALID_RATING")
		}
		fields["rating"] = f
	}

	for key, column := range map[string]string{"locationLat": "location_lat", "locationLng": "location_lng"} {
		if !p.has(key) {
			continue
		}
		if p[key] == nil {
			fields[column] = nil
			continue
		}
		f, ok := p.number(key)
		if !ok {
			return nil, badRequest(key+" must be a number", "INVALID_COORDINATES")
		}
		fields[column] = f
	}
	if p.has("location") && p["location"] != nil {
		raw, err := json.Marshal(p["location"])
		if err != nil {
			return nil, badRequest("location must be a GeoJSON Point", "INVALID_COORDINATES")
		}
		lat, lng, err := geo.ParsePoint(raw)
		if err != nil {
			return nil, badRequest("location must be a GeoJSON Point", "INVALID_COORDINATES")
		}
		fields["location_lat"], fields["location_lng"] = lat, lng
	}
	lat, hasLat := fields["location_lat"].(float64)
	lng, hasLng := fields["location_lng"].(float64)
	if (hasLat && (lat < -90 || lat > 90)) || (hasLng && (lng < -180 || lng > 180)) {
		return nil, badRequest("Coordinates are out of range", "INVALID_COORDINATES")
	}

	for key, column := range map[string]string{"galleryImages": "gallery_images", "amenities": "amenities"} {
		if !p.has(key) {
			continue
		}
		list, ok := p.stringList(key)
		if !ok {
			return nil, badRequest(key+" must be an array of strings", "INVALID_"+strings.ToUpper(camelToSnake(key)))
		}
		fields[column] = models.StringList(list)
	}

	for key, column := range map[string]string{"availabilityStatus": "availability_status", "isActive": "is_active"} {
		if !p.has(key) {
			continue
		}
		b, ok := p.boolean(key)
		if !ok {
			return nil, badRequest(key+" must be a boolean", "INVALID_"+strings.ToUpper(camelToSnake(key)))
		}
		fields[column] = b
	}

	return fields, nil
}

func camelToSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// vehicleFromFields builds a new vehicle from validated columns.
func vehicleFromFields(f map[string]interface{}) *models.Vehicle {
	v := &models.Vehicle{
		Name:               f["name"].(string),
		Type:               f["type"].(string),
		ImageURL:           f["image_url"].(string),
		Seats:              f["seats"].(int),
		Transmission:       f["transmission"].(string),
		FuelType:           f["fuel_type"].(string),
		PricePerDay:        f["price_per_day"].(float64),
		LocationAddress:    f["location_address"].(string),
		GalleryImages:      models.StringList{},
		Amenities:          models.StringList{},
		AvailabilityStatus: true,
		IsActive:           true,
	}
	if n, ok := f["doors"].(int); ok {
		v.Doors = &n
	}
	if x, ok := f["price_per_hour"].(float64); ok {
		v.PricePerHour = &x
	}
	if x, ok := f["location_lat"].(float64); ok {
		v.LocationLat = &x
	}
	if x, ok := f["location_lng"].(float64); ok {
		v.LocationLng = &x
	}
	if s, ok := f["cancellation_policy"].(*string); ok {
		v.CancellationPolicy = s
	}
	if l, ok := f["gallery_images"].(models.StringList); ok {
		v.GalleryImages = l
	}
	if l, ok := f["amenities"].(models.StringList); ok {
		v.Amenities = l
	}
	if b, ok := f["availability_status"].(bool); ok {
		v.AvailabilityStatus = b
	}
	return v
}

func (h *Handler) ListVehicles(c *gin.Context) {
	f := store.VehicleFilter{
		Search:       strings.TrimSpace(c.Query("search")),
		Type:         c.Query("type"),
		Transmission: c.Query("transmission"),
		FuelType:     c.Query("fuelType"),
		Sort:         c.Query("sort"),
	}

	if raw := c.Query("minSeats"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondError(c, http.StatusBadRequest, "minSeats must be a non-negative number", "INVALID_SEATS")
			return
		}
		f.MinSeats = n
	}
	for key, dst := range map[string]**float64{"minPrice": &f.MinPrice, "maxPrice": &f.MaxPrice} {
		raw := c.Query(key)
		if raw == "" {
			continue
		}
		x, err := strconv.ParseFloat(raw, 64)
		if err != nil || x < 0 {
			respondError(c, http.StatusBadRequest, key+" must be a non-negative number", "INVALID_PRICE")
			return
		}
		*dst = &x
	}

	var ok bool
	if f.AvailabilityStatus, ok = optionalBool(c, "availabilityStatus"); !ok {
		respondError(c, http.StatusBadRequest, "availabilityStatus must be true or false", "INVALID_AVAILABILITY_STATUS")
		return
	}
	switch strings.ToLower(c.DefaultQuery("isActive", "true")) {
	case "all":
	case "false":
		inactive := false
		f.IsActive = &inactive
	case "true", "":
		active := true
		f.IsActive = &active
	default:
		respondError(c, http.StatusBadRequest, "isActive must be true, false or all", "INVALID_IS_ACTIVE")
		return
	}

	vehicles, err := h.Store.ListVehicles(c.Request.Context(), f, page(c))
	if err != nil {
		respondInternal(c, "ListVehicles", err)
		return
	}
	c.JSON(http.StatusOK, vehicles)
}

// GetVehicle returns a vehicle by id, including deactivated ones.
func (h *Handler) GetVehicle(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		respondError(c, http.StatusBadRequest, "Valid ID is required", "INVALID_ID")
		return
	}
	v, err := h.Store.VehicleByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(c, http.StatusNotFound, "Vehicle not found", "")
			return
		}
		respondInternal(c, "GetVehicle", err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *Handler) CreateVehicle(c *gin.Context) {
	body, ok := bindBody(c)
	if !ok {
		return
	}
	p := payload(body)

	if missing := p.firstMissing(requiredVehicleFields...); missing != "" {
		respondError(c, http.StatusBadRequest, missing+" is required", "MISSING_REQUIRED_FIELD")
		return
	}
	fields, apiErr := vehicleFields(p)
	if apiErr != nil {
		apiErr.write(c)
		return
	}

	v := vehicleFromFields(fields)
	if err := h.Store.CreateVehicle(c.Request.Context(), v); err != nil {
		respondInternal(c, "CreateVehicle", err)
		return
	}
	c.JSON(http.StatusCreated, v)
}

// UpdateVehicle applies a partial update in one statement.
func (h *Handler) UpdateVehicle(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		respondError(c, http.StatusBadRequest, "Valid ID is required", "INVALID_ID")
		return
	}
	body, ok := bindBody(c)
	if !ok {
		return
	}
	fields, apiErr := vehicleFields(payload(body))
	if apiErr != nil {
		apiErr.write(c)
		return
	}
	if len(fields) == 0 {
		respondError(c, http.StatusBadRequest, "No valid fields provided", "NO_FIELDS_PROVIDED")
		return
	}

	v, err := h.Store.UpdateVehicle(c.Request.Context(), id, fields)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(c, http.StatusNotFound, "Vehicle not found", "")
			return
		}
		respondInternal(c, "UpdateVehicle", err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// DeleteVehicle soft-deletes: the row stays and isActive becomes false.
func (h *Handler) DeleteVehicle(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		respondError(c, http.StatusBadRequest, "Valid ID is required", "INVALID_ID")
		return
	}
	v, err := h.Store.DeactivateVehicle(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(c, http.StatusNotFound, "Vehicle not found", "")
			return
		}
		respondInternal(c, "DeleteVehicle", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":        "Vehicle deleted successfully",
		"deletedVehicle": v,
	})
}

// FleetMap returns active vehicles as GeoJSON, optionally around a point.
func (h *Handler) FleetMap(c *gin.Context) {
	var center *geo.Center
	if c.Query("lat") != "" || c.Query("lng") != "" {
		lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
		lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
		if errLat != nil || errLng != nil || !geo.ValidCoordinates(lat, lng) {
			respondError(c, http.StatusBadRequest, "lat and lng must be valid coordinates", "INVALID_COORDINATES")
			return
		}
		radius := 25.0
		if raw := c.Query("radiusKm"); raw != "" {
			r, err := strconv.ParseFloat(raw, 64)
			if err != nil || r <= 0 {
				respondError(c, http.StatusBadRequest, "radiusKm must be a positive number", "INVALID_RADIUS")
				return
			}
			radius = r
		}
		center = &geo.Center{Lat: lat, Lng: lng, RadiusKm: radius}
	}

	vehicles, err := h.Store.MappableVehicles(c.Request.Context())
	if err != nil {
		respondInternal(c, "FleetMap", err)
		return
	}
	c.JSON(http.StatusOK, geo.FleetMap(vehicles, center))
}

package bookings

type ReserveRequest struct {
	ShowID string   `json:"show_id" validate:"required,uuid"`
	Seats  []string `json:"seats" validate:"required,min=1,dive,required"`
}

type OccupiedSeatsQuery struct {
	ShowID string `form:"showId" validate:"required,uuid"`
}

type ListQuery struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}

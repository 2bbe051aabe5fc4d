package domain

type PlaceCategory string

const (
	PlaceHospital PlaceCategory = "hospital"
	PlacePolice   PlaceCategory = "police"
	PlacePharmacy PlaceCategory = "pharmacy"
)

type PlaceLink struct {
	Title string
	URI   string
}

type NearbyResult struct {
	Summary string
	Links   []PlaceLink
}

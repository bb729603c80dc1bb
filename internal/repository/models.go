package repository

// Models lists every table the service owns, in dependency order.
func Models() []any {
	return []any{
		&userModel{},
		&ownerProfileModel{},
		&residenceModel{},
		&residencePhotoModel{},
		&bookingModel{},
	}
}

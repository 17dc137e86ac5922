package user

import "github.com/ovaphlow/pitchfork/service-user-go/internal/user/entity"

// mergeByTruthiness builds the update applied by UpdateByID. A submitted
// value wins only when non-empty (non-zero for points); otherwise the
// current stored value is kept. Empty strings and zero can therefore not
// clear a field. Swap this function to change the update policy.
func mergeByTruthiness(current *entity.Profile, in *UpdateInput) entity.Changes {
	pick := func(submitted string, stored string) *string {
		if submitted != "" {
			return &submitted
		}
		return &stored
	}
	pickNullable := func(submitted string, stored *string) *string {
		if submitted != "" {
			return &submitted
		}
		return stored
	}
	points := current.Points
	if in.Points != 0 {
		points = in.Points
	}
	return entity.Changes{
		Name:          pick(in.Name, current.Name),
		LastName:      pick(in.LastName, current.LastName),
		Email:         pick(in.Email, current.Email),
		Photo:         pick(in.Photo, current.Photo),
		Phone:         pickNullable(in.Phone.String(), current.Phone),
		BusinessName:  pickNullable(in.BusinessName, current.BusinessName),
		FiscalName:    pickNullable(in.FiscalName, current.FiscalName),
		FiscalAddress: pickNullable(in.FiscalAddress, current.FiscalAddress),
		RUC:           pickNullable(in.RUC.String(), current.RUC),
		DNI:           pickNullable(in.DNI.String(), current.DNI),
		Points:        &points,
	}
}

// Package validator provides small declarative validation rules.
//
// Each helper returns a Rule: a Check func plus the error to report when it
// fails. Apply evaluates rules in order and aggregates failures into
// ValidationErrors, which satisfies error and matches ErrValidationFailed.
//
//	err := validator.Apply(
//	    validator.RequiredString("id", item.ID),
//	    validator.PositiveDecimal("price", item.Price),
//	    validator.PositiveInt("quantity", item.Quantity),
//	)
//	if verrs := validator.ExtractValidationErrors(err); verrs != nil {
//	    log.Println(verrs.First())
//	}
package validator

package restapi

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// param is a request parameter with its validator rules.
type param struct {
	name  string
	value string
	rules string
}

const (
	iataRules     = "required,alphanum,len=3"
	unlocodeRules = "required,alphanum,len=5"
	geoIDRules    = "required,numeric"
)

// checkParams validates every parameter and returns the field errors, or
// nil when all of them pass.
func (api *RestAPI) checkParams(params ...param) map[string][]string {
	fieldErrors := make(map[string][]string)
	for _, p := range params {
		err := api.validate.Var(p.value, p.rules)
		if err == nil {
			continue
		}
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				fieldErrors[p.name] = append(fieldErrors[p.name], fmt.Sprintf("%s fails %q", p.name, fe.Tag()))
			}
			continue
		}
		fieldErrors[p.name] = append(fieldErrors[p.name], err.Error())
	}
	if len(fieldErrors) == 0 {
		return nil
	}
	return fieldErrors
}

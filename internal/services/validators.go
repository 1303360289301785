package services

import (
	"fmt"
	"strings"
)

// DemographicsInput mirrors the inbound demographics payload. Pointer
// fields distinguish an absent key from a zero value.
type DemographicsInput struct {
	SpeakEnglish  *string `json:"speak_english"`
	Age           *int    `json:"age"`
	Gender        *string `json:"gender"`
	Residence     *string `json:"residence"`
	Socioeconomic *string `json:"socioeconomic"`
	MaritalStatus *string `json:"marital_status"`
	Education     *string `json:"education"`
}

// ConsentInput mirrors the inbound consent payload.
type ConsentInput struct {
	ConsentGiven *int `json:"consent_given"`
}

// RepressionItemInput is one inventory answer as submitted.
type RepressionItemInput struct {
	QIndex *int `json:"qIndex"`
	Score  *int `json:"score"`
}

// RatingInput mirrors the post-rating payload.
type RatingInput struct {
	Rating *int `json:"rating"`
}

func validateAge(age *int) (int, error) {
	if age == nil {
		return 0, NewMissingFieldError("age is required")
	}
	if *age < 18 || *age > 99 {
		return 0, NewInvalidValueError("invalid age (must be integer 18-99)")
	}
	return *age, nil
}

// validateEnum trims and lowercases the value, then checks membership.
func validateEnum(field string, value *string, allowed ...string) (string, error) {
	if value == nil {
		return "", NewMissingFieldError(field + " is required")
	}
	norm := strings.ToLower(strings.TrimSpace(*value))
	for _, a := range allowed {
		if norm == a {
			return norm, nil
		}
	}
	return "", NewInvalidValueError(fmt.Sprintf("invalid %s (must be one of %s)", field, strings.Join(allowed, "/")))
}

// ValidateDemographicsBasic enforces the two-field demographic schema:
// age 18-99 and gender male/female (case-insensitive, stored lowercase).
func ValidateDemographicsBasic(in DemographicsInput) (*Demographics, error) {
	age, err := validateAge(in.Age)
	if err != nil {
		return nil, err
	}
	gender, err := validateEnum("gender", in.Gender, "male", "female")
	if err != nil {
		return nil, err
	}
	return &Demographics{Age: age, Gender: gender}, nil
}

// ValidateDemographicsExtended enforces the long demographic schema used
// by the extended questionnaire deployment.
func ValidateDemographicsExtended(in DemographicsInput) (*Demographics, error) {
	speak, err := validateEnum("speak_english", in.SpeakEnglish, "yes", "no")
	if err != nil {
		return nil, err
	}
	age, err := validateAge(in.Age)
	if err != nil {
		return nil, err
	}
	gender, err := validateEnum("gender", in.Gender, "male", "female", "other")
	if err != nil {
		return nil, err
	}
	residence, err := validateEnum("residence", in.Residence, "north", "central", "south")
	if err != nil {
		return nil, err
	}
	socio, err := validateEnum("socioeconomic", in.Socioeconomic, "low", "medium", "high")
	if err != nil {
		return nil, err
	}
	marital, err := validateEnum("marital_status", in.MaritalStatus, "single", "married")
	if err != nil {
		return nil, err
	}
	education, err := validateEnum("education", in.Education, "until_high_school", "high_school", "ba", "masters_or_higher")
	if err != nil {
		return nil, err
	}
	return &Demographics{
		Age:           age,
		Gender:        gender,
		SpeakEnglish:  speak,
		Residence:     residence,
		Socioeconomic: socio,
		MaritalStatus: marital,
		Education:     education,
	}, nil
}

// ValidateConsent accepts consent_given 0 or 1.
func ValidateConsent(in ConsentInput) (int, error) {
	if in.ConsentGiven == nil {
		return 0, NewMissingFieldError("consent_given is required")
	}
	if v := *in.ConsentGiven; v == 0 || v == 1 {
		return v, nil
	}
	return 0, NewInvalidValueError("invalid consent_given (must be 0 or 1)")
}

// ValidateRepression resolves an inventory submission into one score per
// item. Entries outside qIndex 1-15 or score 1-5 are ignored; duplicate
// indices overwrite earlier ones. The submission fails if any index in
// 1-15 is left uncovered, listing the missing indices in ascending order.
func ValidateRepression(items []RepressionItemInput) ([]int, error) {
	scores := map[int]int{}
	for _, item := range items {
		if item.QIndex == nil || item.Score == nil {
			continue
		}
		q, sc := *item.QIndex, *item.Score
		if q < 1 || q > RepressionItemCount || sc < 1 || sc > 5 {
			continue
		}
		scores[q] = sc
	}
	var missing []int
	for i := 1; i <= RepressionItemCount; i++ {
		if _, ok := scores[i]; !ok {
			missing = append(missing, i)
		}
	}
	if len(missing) > 0 {
		return nil, NewInvalidValueError(fmt.Sprintf("missing repression answers: %v", missing))
	}
	out := make([]int, RepressionItemCount)
	for i := 1; i <= RepressionItemCount; i++ {
		out[i-1] = scores[i]
	}
	return out, nil
}

// ValidateRating accepts a rating between 1 and 10.
func ValidateRating(in RatingInput) (int, error) {
	if in.Rating == nil {
		return 0, NewMissingFieldError("rating is required")
	}
	if v := *in.Rating; v >= 1 && v <= 10 {
		return v, nil
	}
	return 0, NewInvalidValueError("invalid rating (must be integer 1-10)")
}

// ValidateStageName restricts the free-form save path to known stages.
func ValidateStageName(stage string) error {
	switch stage {
	case StageDemographics, StageRepression, StageManipulation, StageRating:
		return nil
	}
	return NewInvalidValueError(fmt.Sprintf("invalid stage %q", stage))
}

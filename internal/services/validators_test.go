package services

import (
	"strings"
	"testing"
)

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func assertCode(t *testing.T, err error, code ErrorCode) {
	t.Helper()
	se, ok := AsServiceError(err)
	if !ok {
		t.Fatalf("expected ServiceError, got %v", err)
	}
	if se.Code != code {
		t.Fatalf("expected code %q, got %q (%s)", code, se.Code, se.Message)
	}
}

func TestValidateDemographicsBasic(t *testing.T) {
	d, err := ValidateDemographicsBasic(DemographicsInput{Age: intPtr(30), Gender: strPtr("  Male ")})
	if err != nil {
		t.Fatalf("valid input rejected: %v", err)
	}
	if d.Age != 30 || d.Gender != "male" {
		t.Fatalf("expected normalized record, got %+v", d)
	}

	_, err = ValidateDemographicsBasic(DemographicsInput{Gender: strPtr("female")})
	assertCode(t, err, ErrorMissingField)

	for _, age := range []int{17, 100, -1} {
		_, err = ValidateDemographicsBasic(DemographicsInput{Age: intPtr(age), Gender: strPtr("female")})
		assertCode(t, err, ErrorInvalidValue)
	}

	_, err = ValidateDemographicsBasic(DemographicsInput{Age: intPtr(25), Gender: strPtr("unicorn")})
	assertCode(t, err, ErrorInvalidValue)
	if se, _ := AsServiceError(err); !strings.Contains(se.Message, "gender") {
		t.Fatalf("error should name the field: %s", se.Message)
	}

	_, err = ValidateDemographicsBasic(DemographicsInput{Age: intPtr(25)})
	assertCode(t, err, ErrorMissingField)
}

func TestValidateDemographicsExtended(t *testing.T) {
	in := DemographicsInput{
		SpeakEnglish:  strPtr("Yes"),
		Age:           intPtr(42),
		Gender:        strPtr("Other"),
		Residence:     strPtr("north"),
		Socioeconomic: strPtr("MEDIUM"),
		MaritalStatus: strPtr("married"),
		Education:     strPtr("masters_or_higher"),
	}
	d, err := ValidateDemographicsExtended(in)
	if err != nil {
		t.Fatalf("valid input rejected: %v", err)
	}
	if d.SpeakEnglish != "yes" || d.Gender != "other" || d.Socioeconomic != "medium" {
		t.Fatalf("expected lowercased enums, got %+v", d)
	}

	bad := in
	bad.Residence = strPtr("east")
	_, err = ValidateDemographicsExtended(bad)
	assertCode(t, err, ErrorInvalidValue)

	missing := in
	missing.Education = nil
	_, err = ValidateDemographicsExtended(missing)
	assertCode(t, err, ErrorMissingField)
}

func TestValidateConsent(t *testing.T) {
	for _, v := range []int{0, 1} {
		got, err := ValidateConsent(ConsentInput{ConsentGiven: intPtr(v)})
		if err != nil || got != v {
			t.Fatalf("consent %d rejected: %v", v, err)
		}
	}
	_, err := ValidateConsent(ConsentInput{})
	assertCode(t, err, ErrorMissingField)
	_, err = ValidateConsent(ConsentInput{ConsentGiven: intPtr(2)})
	assertCode(t, err, ErrorInvalidValue)
}

func repressionItems(n int) []RepressionItemInput {
	items := make([]RepressionItemInput, 0, n)
	for i := 1; i <= n; i++ {
		items = append(items, RepressionItemInput{QIndex: intPtr(i), Score: intPtr(3)})
	}
	return items
}

func TestValidateRepressionComplete(t *testing.T) {
	scores, err := ValidateRepression(repressionItems(15))
	if err != nil {
		t.Fatalf("complete inventory rejected: %v", err)
	}
	if len(scores) != 15 {
		t.Fatalf("expected 15 scores, got %d", len(scores))
	}
}

func TestValidateRepressionDuplicatesLastWins(t *testing.T) {
	items := repressionItems(15)
	items = append(items, RepressionItemInput{QIndex: intPtr(7), Score: intPtr(5)})
	scores, err := ValidateRepression(items)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if scores[6] != 5 {
		t.Fatalf("expected last write to win for q7, got %d", scores[6])
	}
}

func TestValidateRepressionMissingListedAscending(t *testing.T) {
	items := repressionItems(15)
	// Drop q2 and q11; push an out-of-range score for q5 so it is ignored too.
	var kept []RepressionItemInput
	for _, it := range items {
		if *it.QIndex == 2 || *it.QIndex == 11 {
			continue
		}
		if *it.QIndex == 5 {
			it.Score = intPtr(9)
		}
		kept = append(kept, it)
	}
	_, err := ValidateRepression(kept)
	assertCode(t, err, ErrorInvalidValue)
	se, _ := AsServiceError(err)
	if !strings.Contains(se.Message, "[2 5 11]") {
		t.Fatalf("expected missing indices [2 5 11], got %q", se.Message)
	}
}

func TestValidateRepressionEmpty(t *testing.T) {
	_, err := ValidateRepression(nil)
	assertCode(t, err, ErrorInvalidValue)
	se, _ := AsServiceError(err)
	if !strings.Contains(se.Message, "[1 2 3 4 5 6 7 8 9 10 11 12 13 14 15]") {
		t.Fatalf("expected all indices listed, got %q", se.Message)
	}
}

func TestValidateRating(t *testing.T) {
	for _, v := range []int{1, 10, 7} {
		got, err := ValidateRating(RatingInput{Rating: intPtr(v)})
		if err != nil || got != v {
			t.Fatalf("rating %d rejected: %v", v, err)
		}
	}
	for _, v := range []int{0, 11, -3} {
		_, err := ValidateRating(RatingInput{Rating: intPtr(v)})
		assertCode(t, err, ErrorInvalidValue)
	}
	_, err := ValidateRating(RatingInput{})
	assertCode(t, err, ErrorMissingField)
}

func TestValidateStageName(t *testing.T) {
	for _, stage := range []string{"demo", "rep", "exp", "rating"} {
		if err := ValidateStageName(stage); err != nil {
			t.Fatalf("stage %q rejected: %v", stage, err)
		}
	}
	for _, stage := range []string{"", "consent2", "drop_table", "finish"} {
		err := ValidateStageName(stage)
		assertCode(t, err, ErrorInvalidValue)
	}
}

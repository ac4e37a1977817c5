package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_UserProfileAcceptsPartialOutput(t *testing.T) {
	// Missing fields default later; the schema only rejects wrong shapes.
	err := Validate(UserProfile, []byte(`{"skills": ["Go"]}`))
	assert.NoError(t, err)
}

func TestValidate_UserProfileRejectsWrongTypes(t *testing.T) {
	err := Validate(UserProfile, []byte(`{"skills": "Go"}`))
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, UserProfile, verr.Schema)
	assert.NotEmpty(t, verr.Issues)
}

func TestValidate_CompanyProfileRequiresName(t *testing.T) {
	assert.Error(t, Validate(CompanyProfile, []byte(`{"values": []}`)))
	assert.NoError(t, Validate(CompanyProfile, []byte(`{"name": "Acme"}`)))
}

func TestValidate_GeneratedDocumentRequiresSomeContent(t *testing.T) {
	assert.Error(t, Validate(GeneratedDocument, []byte(`{"citations": []}`)))
	assert.NoError(t, Validate(GeneratedDocument, []byte(`{"cv_content": "CV", "citations": []}`)))
	assert.NoError(t, Validate(GeneratedDocument, []byte(`{"cover_content": "Letter", "citations": []}`)))
}

func TestValidate_GeneratedDocumentCitationShape(t *testing.T) {
	bad := `{"cv_content": "CV", "citations": [{"section": "Profile"}]}`
	assert.Error(t, Validate(GeneratedDocument, []byte(bad)))

	good := `{"cv_content": "CV", "citations": [{"section": "Profile", "claim": "x", "source": "CV.pdf", "line": 3}]}`
	assert.NoError(t, Validate(GeneratedDocument, []byte(good)))
}

func TestValidate_JobAnalysisExperienceLevelEnum(t *testing.T) {
	bad := `{"title": "Engineer", "requirements": {"experience_level": "wizard"}}`
	assert.Error(t, Validate(JobAnalysis, []byte(bad)))

	good := `{"title": "Engineer", "requirements": {"experience_level": "senior", "skills": ["Go"]}}`
	assert.NoError(t, Validate(JobAnalysis, []byte(good)))
}

func TestValidate_NotJSON(t *testing.T) {
	assert.Error(t, Validate(UserProfile, []byte("not json at all")))
}

func TestValidate_UnknownSchema(t *testing.T) {
	assert.Error(t, Validate("nope", []byte(`{}`)))
}

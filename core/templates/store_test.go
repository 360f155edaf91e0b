package templates

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adalundhe/psyche/core/errors"
)

func writeTemplate(t *testing.T, root string, rel string, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	root := t.TempDir()
	writeTemplate(t, root, "prompts/sp_system_prompt/sp_system_prompt_version5.0.txt", "You are a simulated patient.")
	writeTemplate(t, root, "prompts/sp_system_prompt/sp_system_prompt_version5.0_PTSD.txt", "You are a simulated patient with trauma history.")
	writeTemplate(t, root, "profile_form/profile_form_version5.0_MDD.json", `{"Name": "blank (data_type:string, guide:null)"}`)
	writeTemplate(t, root, "prompts/paca_system_prompt/given_form_version5.0.json", `{"Chief complaint": {"description": "blank"}}`)
	writeTemplate(t, root, "prompts/mse_few_shot/mse_MDD.txt", "- Mood : depressed")
	writeTemplate(t, root, "prompts/instruction_form/instruction_form_MDD.txt", "Speak slowly.")
	writeTemplate(t, root, "rubric/psyche_rubric_version5.0.json", `{"version": "5.0", "elements": []}`)

	store, err := NewStore(root)
	require.NoError(t, err, "open store")
	return store, root
}

func TestVersion(t *testing.T) {
	assert.Equal(t, "5.0", Version(5))
	assert.Equal(t, "12.3", Version(12.3))
}

func TestStore_SystemPrompt(t *testing.T) {
	store, _ := newTestStore(t)

	content, err := store.SystemPrompt("sp", "5.0", "")
	require.NoError(t, err)
	assert.Equal(t, "You are a simulated patient.", content)
}

func TestStore_SystemPrompt_DiagnosisOverride(t *testing.T) {
	store, _ := newTestStore(t)

	content, err := store.SystemPrompt("sp", "5.0", "PTSD")
	require.NoError(t, err)
	assert.Contains(t, content, "trauma history", "diagnosis-qualified variant should win")

	// no MDD variant exists, so the default is used
	content, err = store.SystemPrompt("sp", "5.0", "MDD")
	require.NoError(t, err)
	assert.Equal(t, "You are a simulated patient.", content)
}

func TestStore_SystemPrompt_NotFound(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.SystemPrompt("sp", "9.9", "")
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindTemplateNotFound))
}

func TestStore_ProfileForm(t *testing.T) {
	store, _ := newTestStore(t)

	form, err := store.ProfileForm("5.0", "MDD")
	require.NoError(t, err)
	v, ok := form.Get("Name")
	require.True(t, ok)
	assert.Equal(t, "blank (data_type:string, guide:null)", v)
}

func TestStore_ProfileForm_MissingDiagnosis(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.ProfileForm("5.0", "GAD")
	assert.True(t, errors.IsKind(err, errors.KindTemplateNotFound))
}

func TestStore_GivenForm(t *testing.T) {
	store, _ := newTestStore(t)

	form, err := store.GivenForm("5.0")
	require.NoError(t, err)
	assert.Equal(t, []string{"Chief complaint"}, form.Keys())
}

func TestStore_AuxiliaryFiles(t *testing.T) {
	store, _ := newTestStore(t)

	fewShot, err := store.MSEFewShot("MDD")
	require.NoError(t, err)
	assert.Contains(t, fewShot, "Mood")

	instr, err := store.InstructionForm("MDD")
	require.NoError(t, err)
	assert.Equal(t, "Speak slowly.", instr)

	_, err = store.MSEFewShot("OCD")
	assert.True(t, errors.IsKind(err, errors.KindTemplateNotFound))
}

func TestStore_Rubric(t *testing.T) {
	store, _ := newTestStore(t)

	content, err := store.Rubric("5.0")
	require.NoError(t, err)
	assert.Contains(t, content, `"version": "5.0"`)

	_, err = store.Rubric("9.9")
	assert.True(t, errors.IsKind(err, errors.KindTemplateNotFound))
}

func TestStore_CachesContent(t *testing.T) {
	store, root := newTestStore(t)

	first, err := store.SystemPrompt("sp", "5.0", "")
	require.NoError(t, err)

	// templates are immutable per version: a rewrite on disk is not observed
	writeTemplate(t, root, "prompts/sp_system_prompt/sp_system_prompt_version5.0.txt", "changed")

	second, err := store.SystemPrompt("sp", "5.0", "")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

package construct

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/adalundhe/psyche/core/blobstore"
	"github.com/adalundhe/psyche/core/errors"
	"github.com/adalundhe/psyche/core/format"
	"github.com/adalundhe/psyche/core/gateway"
	"github.com/adalundhe/psyche/core/templates"
)

// Module names under the template store's prompts directory.
const (
	ModuleProfile   = "profile"
	ModuleHistory   = "history"
	ModuleDirective = "beh_dir"
)

// Artifacts are the three persistent authoring outputs for one client.
type Artifacts struct {
	Client    int
	Info      GivenInformation
	Version   string
	Profile   *format.Map
	History   string
	Directive string
}

// Builder runs the three authoring phases. Each phase is persisted before
// the next starts so any phase can be regenerated independently.
type Builder struct {
	templates *templates.Store
	store     *blobstore.Adapter
	llm       gateway.Completer
	dateToken string
}

// NewBuilder creates an authoring pipeline. dateToken anchors every
// generated narrative to a fixed date.
func NewBuilder(ts *templates.Store, store *blobstore.Adapter, llm gateway.Completer, dateToken string) *Builder {
	return &Builder{templates: ts, store: store, llm: llm, dateToken: dateToken}
}

// authoring runs with temperature zero for reproducible artifacts
var authoringTemperature = 0.0

// Build authors and persists all three artifacts for a client.
func (b *Builder) Build(ctx context.Context, client int, info GivenInformation, version string) (*Artifacts, error) {
	tag, ok := info.Tag()
	if !ok {
		return nil, fmt.Errorf("unrecognized diagnosis %q", info.Diagnosis)
	}

	if err := b.store.Put(ctx, client, blobstore.GivenInformationKey(), info); err != nil {
		return nil, err
	}

	profile, err := b.BuildProfile(ctx, client, info, tag, version)
	if err != nil {
		return nil, err
	}

	history, err := b.BuildHistory(ctx, client, profile, version)
	if err != nil {
		return nil, err
	}

	directive, err := b.BuildDirective(ctx, client, profile, history, info, tag, version)
	if err != nil {
		return nil, err
	}

	return &Artifacts{
		Client:    client,
		Info:      info,
		Version:   version,
		Profile:   profile,
		History:   history,
		Directive: directive,
	}, nil
}

// BuildProfile generates and persists the factual backbone of the case.
func (b *Builder) BuildProfile(ctx context.Context, client int, info GivenInformation, tag Diagnosis, version string) (*format.Map, error) {
	system, err := b.templates.SystemPrompt(ModuleProfile, version, string(tag))
	if err != nil {
		return nil, err
	}

	form, err := b.templates.ProfileForm(version, string(tag))
	if err != nil {
		return nil, err
	}

	formJSON, _ := json.MarshalIndent(form, "", "  ")
	infoJSON, _ := json.Marshal(info)

	var turn strings.Builder
	turn.WriteString("Fill in every field of the following profile form for the patient described below.\n\n")
	turn.WriteString("<Given Information>\n")
	turn.Write(infoJSON)
	turn.WriteString("\n</Given Information>\n\n<Profile Form>\n")
	turn.Write(formJSON)
	turn.WriteString("\n</Profile Form>")

	raw, err := b.llm.Complete(ctx, gateway.Call{
		System:      system,
		UserTurn:    turn.String(),
		Bindings:    map[string]string{"date": b.dateToken},
		Temperature: &authoringTemperature,
	})
	if err != nil {
		return nil, err
	}

	profile, err := format.CoerceObject(raw)
	if err != nil {
		return nil, err
	}

	fillMissingKeys(profile, form)

	if err := b.store.Put(ctx, client, blobstore.ProfileKey(version), profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// BuildHistory generates and persists the narrative voice of the case.
func (b *Builder) BuildHistory(ctx context.Context, client int, profile *format.Map, version string) (string, error) {
	system, err := b.templates.SystemPrompt(ModuleHistory, version, "")
	if err != nil {
		return "", err
	}

	profileJSON, _ := json.MarshalIndent(profile, "", "  ")

	history, err := b.llm.Complete(ctx, gateway.Call{
		System:      system,
		UserTurn:    fmt.Sprintf("Write the patient's history based on this profile:\n%s", profileJSON),
		Bindings:    map[string]string{"date": b.dateToken},
		Temperature: &authoringTemperature,
	})
	if err != nil {
		return "", err
	}
	history = strings.TrimSpace(history)

	if err := b.store.Put(ctx, client, blobstore.HistoryKey(version), history); err != nil {
		return "", err
	}
	return history, nil
}

// BuildDirective generates and persists the behavioral directive,
// including the machine-readable <Form> enumeration of MSE findings.
func (b *Builder) BuildDirective(ctx context.Context, client int, profile *format.Map, history string, info GivenInformation, tag Diagnosis, version string) (string, error) {
	system, err := b.templates.SystemPrompt(ModuleDirective, version, string(tag))
	if err != nil {
		return "", err
	}

	fewShot, err := b.templates.MSEFewShot(string(tag))
	if err != nil {
		return "", err
	}

	instruction, err := b.templates.InstructionForm(string(tag))
	if err != nil {
		return "", err
	}

	profileJSON, _ := json.MarshalIndent(profile, "", "  ")
	infoJSON, _ := json.Marshal(info)

	var turn strings.Builder
	turn.WriteString("<Given Information>\n")
	turn.Write(infoJSON)
	turn.WriteString("\n</Given Information>\n\n<Profile>\n")
	turn.Write(profileJSON)
	turn.WriteString("\n</Profile>\n\n<History>\n")
	turn.WriteString(history)
	turn.WriteString("\n</History>\n\n<MSE Examples>\n")
	turn.WriteString(fewShot)
	turn.WriteString("\n</MSE Examples>\n\n<Instruction Form>\n")
	turn.WriteString(instruction)
	turn.WriteString("\n</Instruction Form>")

	directive, err := b.llm.Complete(ctx, gateway.Call{
		System:      system,
		UserTurn:    turn.String(),
		Bindings:    map[string]string{"date": b.dateToken},
		Temperature: &authoringTemperature,
	})
	if err != nil {
		return "", err
	}
	directive = strings.TrimSpace(directive)

	if err := b.store.Put(ctx, client, blobstore.DirectiveKey(version), directive); err != nil {
		return "", err
	}
	return directive, nil
}

// Load re-reads persisted artifacts for a client; used by the extraction
// phase after a dialogue run.
func Load(ctx context.Context, store *blobstore.Adapter, client int, version string) (*Artifacts, error) {
	var info GivenInformation
	data, found, err := store.Get(ctx, client, blobstore.GivenInformationKey())
	if err != nil {
		return nil, err
	}
	if found {
		if err := json.Unmarshal(data, &info); err != nil {
			return nil, errors.Wrap(errors.KindBlobStore, "construct.load", err)
		}
	}

	profile, found, err := store.GetRecord(ctx, client, blobstore.ProfileKey(version))
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("client %d has no profile for version %s", client, version)
	}

	history, _, err := store.GetText(ctx, client, blobstore.HistoryKey(version))
	if err != nil {
		return nil, err
	}

	directive, _, err := store.GetText(ctx, client, blobstore.DirectiveKey(version))
	if err != nil {
		return nil, err
	}

	return &Artifacts{
		Client:    client,
		Info:      info,
		Version:   version,
		Profile:   profile,
		History:   history,
		Directive: directive,
	}, nil
}

// fillMissingKeys copies form defaults for any key the model dropped, so
// a profile always carries every key of its form.
func fillMissingKeys(profile, form *format.Map) {
	form.Range(func(key string, value any) bool {
		if _, ok := profile.Get(key); !ok {
			slog.Warn("profile missing form key, using form default", "key", key)
			profile.Set(key, value)
		}
		return true
	})
}

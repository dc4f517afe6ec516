package project

import (
	"testing"

	"github.com/scawful/yaze-go/internal/hackmanifest"
)

func TestMarshalParse_RoundTrips(t *testing.T) {
	p := New("hyrule-hack")
	p.Metadata.Author = "link"
	p.Files.RomFilename = "roms/zelda3.sfc"
	p.FeatureFlags.SaveOverworldMaps = true
	p.WorkspaceSettings.RecentFiles = []string{"a.sfc", "b.sfc"}
	p.ResourceLabels["sprites"] = map[string]string{"0x10": "octorok"}

	data := p.Marshal()
	back, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if back.Name != p.Name {
		t.Errorf("Name = %q, want %q", back.Name, p.Name)
	}
	if back.Metadata.Author != "link" {
		t.Errorf("Author = %q, want %q", back.Metadata.Author, "link")
	}
	if back.Files.RomFilename != "roms/zelda3.sfc" {
		t.Errorf("RomFilename = %q", back.Files.RomFilename)
	}
	if !back.FeatureFlags.SaveOverworldMaps {
		t.Errorf("SaveOverworldMaps not round-tripped")
	}
	if len(back.WorkspaceSettings.RecentFiles) != 2 || back.WorkspaceSettings.RecentFiles[1] != "b.sfc" {
		t.Errorf("RecentFiles = %v", back.WorkspaceSettings.RecentFiles)
	}
	if back.ResourceLabels["sprites"]["0x10"] != "octorok" {
		t.Errorf("ResourceLabels[sprites][0x10] = %q, want octorok", back.ResourceLabels["sprites"]["0x10"])
	}
	if back.Metadata.ProjectID != p.Metadata.ProjectID {
		t.Errorf("ProjectID = %q, want %q", back.Metadata.ProjectID, p.Metadata.ProjectID)
	}
}

func TestParse_AssignsProjectIDWhenMissing(t *testing.T) {
	p, err := Parse([]byte("[project]\nname=untitled\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.Metadata.ProjectID == "" {
		t.Errorf("expected a generated project id")
	}
	if p.Metadata.CreatedBy != "yaze-go" {
		t.Errorf("CreatedBy = %q, want yaze-go", p.Metadata.CreatedBy)
	}
}

func TestParse_KeybindingsAndEditorVisibility(t *testing.T) {
	doc := "[keybindings]\nsave=ctrl+s\n\n[editor_visibility]\noverworld=true\ndungeon=false\n"
	p, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.WorkspaceSettings.CustomKeybindings["save"] != "ctrl+s" {
		t.Errorf("keybinding not parsed")
	}
	if !p.WorkspaceSettings.EditorVisibility["overworld"] || p.WorkspaceSettings.EditorVisibility["dungeon"] {
		t.Errorf("editor visibility not parsed: %+v", p.WorkspaceSettings.EditorVisibility)
	}
}

func TestHackManifestSection_RoundTrips(t *testing.T) {
	p := New("hyrule-hack")
	p.HackManifestPath = "manifests/enemizer.yaml"
	p.WritePolicy = hackmanifest.PolicyBlock

	back, err := Parse(p.Marshal())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if back.HackManifestPath != "manifests/enemizer.yaml" {
		t.Errorf("HackManifestPath = %q, want manifests/enemizer.yaml", back.HackManifestPath)
	}
	if back.WritePolicy != hackmanifest.PolicyBlock {
		t.Errorf("WritePolicy = %q, want %q", back.WritePolicy, hackmanifest.PolicyBlock)
	}
}

func TestParse_DefaultsWritePolicyToWarnWhenAbsent(t *testing.T) {
	p, err := Parse([]byte("[project]\nname=untitled\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.WritePolicy != hackmanifest.PolicyWarn {
		t.Errorf("WritePolicy = %q, want %q", p.WritePolicy, hackmanifest.PolicyWarn)
	}
}

func TestImportZScream_RemapsKnownFields(t *testing.T) {
	legacy := "rom_file=zelda3.sfc\nsource_code=src\nproject_name=MyHack\nunmapped_field=42\n"
	p, err := ImportZScream("projects/legacy.zsproj", []byte(legacy))
	if err != nil {
		t.Fatalf("ImportZScream: %v", err)
	}
	if p.Files.RomFilename != "zelda3.sfc" {
		t.Errorf("RomFilename = %q, want zelda3.sfc", p.Files.RomFilename)
	}
	if p.Files.CodeFolder != "src" {
		t.Errorf("CodeFolder = %q, want src", p.Files.CodeFolder)
	}
	if p.Name != "MyHack" {
		t.Errorf("Name = %q, want MyHack", p.Name)
	}
	if p.ZScreamProjectFile != "projects/legacy.zsproj" {
		t.Errorf("ZScreamProjectFile = %q", p.ZScreamProjectFile)
	}
	if p.ZScreamMappings["rom_file"] != "rom_filename" {
		t.Errorf("ZScreamMappings[rom_file] = %q, want rom_filename", p.ZScreamMappings["rom_file"])
	}
}

func TestImportZScream_FallsBackToFileStemWhenNameMissing(t *testing.T) {
	p, err := ImportZScream("projects/my_hack.zsproj", []byte("rom_file=x.sfc\n"))
	if err != nil {
		t.Fatalf("ImportZScream: %v", err)
	}
	if p.Name != "my_hack_imported" {
		t.Errorf("Name = %q, want my_hack_imported", p.Name)
	}
}

func TestZScreamCompatibilitySection_RoundTrips(t *testing.T) {
	p := New("x")
	p.ZScreamProjectFile = "legacy.zsproj"
	p.ZScreamMappings["rom_file"] = "rom_filename"

	back, err := Parse(p.Marshal())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if back.ZScreamProjectFile != "legacy.zsproj" {
		t.Errorf("ZScreamProjectFile = %q", back.ZScreamProjectFile)
	}
	if back.ZScreamMappings["rom_file"] != "rom_filename" {
		t.Errorf("ZScreamMappings[rom_file] = %q", back.ZScreamMappings["rom_file"])
	}
}

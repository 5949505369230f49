package main

import "testing"

func TestBuildRegistryBuiltins(t *testing.T) {
	if err := buildRegistry(nil); err != nil {
		t.Fatalf("buildRegistry(nil) returned error: %v", err)
	}

	entry, err := getDatasetEntry("mars-mgs-mola")
	if err != nil {
		t.Fatalf("getDatasetEntry returned error: %v", err)
	}
	if entry.Profile.TotalWidth != 46080 || entry.Profile.TotalHeight != 23040 {
		t.Errorf("mars-mgs-mola mosaic = %dx%d, want 46080x23040", entry.Profile.TotalWidth, entry.Profile.TotalHeight)
	}
	if entry.ChunkWidth != 8192 || entry.ChunkHeight != 8192 {
		t.Errorf("mars-mgs-mola chunk size = %dx%d, want 8192x8192", entry.ChunkWidth, entry.ChunkHeight)
	}

	if _, err = getDatasetEntry("no-such-dataset"); err == nil {
		t.Error("getDatasetEntry for unknown dataset returned no error")
	}
}

func TestBuildRegistryOverrideAndExtend(t *testing.T) {
	configured := []DatasetEntry{
		{
			Name:        "mars-mgs-mola", // overrides the built-in entry
			DataSource:  "file:///srv/mirror/mola.tif",
			ChunkWidth:  4096,
			ChunkHeight: 4096,
			Profile: ChunkProfile{
				TotalWidth:     46080,
				TotalHeight:    23040,
				MetersPerPixel: 463.0,
				MaxElevation:   21241.0,
			},
		},
		{
			Name:        "moon-lola",
			ChunkWidth:  8192,
			ChunkHeight: 8192,
			Profile: ChunkProfile{
				TotalWidth:     92160,
				TotalHeight:    46080,
				MetersPerPixel: 118.0,
				MaxElevation:   10786.0,
			},
		},
	}

	if err := buildRegistry(configured); err != nil {
		t.Fatalf("buildRegistry returned error: %v", err)
	}

	overridden, err := getDatasetEntry("mars-mgs-mola")
	if err != nil {
		t.Fatalf("getDatasetEntry returned error: %v", err)
	}
	if overridden.ChunkWidth != 4096 || overridden.DataSource != "file:///srv/mirror/mola.tif" {
		t.Errorf("override not applied, got %+v", overridden)
	}

	if _, err = getDatasetEntry("moon-lola"); err != nil {
		t.Errorf("configured dataset not registered: %v", err)
	}

	// catalog is sorted by name and contains builtins plus the new entry
	catalog := datasetCatalog()
	if len(catalog) != 3 {
		t.Fatalf("catalog has %d entries, want 3", len(catalog))
	}
	for i := 1; i < len(catalog); i++ {
		if catalog[i-1].Name >= catalog[i].Name {
			t.Errorf("catalog not sorted: %q before %q", catalog[i-1].Name, catalog[i].Name)
		}
	}
}

func TestBuildRegistryRejectsInvalidEntries(t *testing.T) {
	validProfile := ChunkProfile{TotalWidth: 16, TotalHeight: 8, MetersPerPixel: 100.0, MaxElevation: 1000.0}

	tests := []struct {
		name  string
		entry DatasetEntry
	}{
		{
			name:  "missing name",
			entry: DatasetEntry{ChunkWidth: 8, ChunkHeight: 8, Profile: validProfile},
		},
		{
			name:  "zero chunk width",
			entry: DatasetEntry{Name: "broken", ChunkWidth: 0, ChunkHeight: 8, Profile: validProfile},
		},
		{
			name: "invalid profile",
			entry: DatasetEntry{Name: "broken", ChunkWidth: 8, ChunkHeight: 8,
				Profile: ChunkProfile{TotalWidth: 0, TotalHeight: 8, MetersPerPixel: 100.0, MaxElevation: 1000.0}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := buildRegistry([]DatasetEntry{tt.entry}); err == nil {
				t.Error("buildRegistry accepted invalid entry")
			}
		})
	}
}

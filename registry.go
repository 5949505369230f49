package main

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"sort"
)

// DatasetEntry describes one known DEM mosaic: where the raster comes from,
// how it is scaled, and how it is chunked.
type DatasetEntry struct {
	Name string `yaml:"Name"` // registry key, e.g. mars-mgs-mola
	// OriginalDataSource is the authoritative upstream mosaic.
	OriginalDataSource string `yaml:"OriginalDataSource"`
	// DataSource is the archived, normalized copy this service bakes from.
	DataSource  string `yaml:"DataSource"`
	Attribution string `yaml:"Attribution"`
	// nominal chunk dimensions used when baking this dataset
	ChunkWidth  uint32       `yaml:"ChunkWidth"`
	ChunkHeight uint32       `yaml:"ChunkHeight"`
	Profile     ChunkProfile `yaml:"Profile"`
}

// Registry represents the catalog of all known datasets (readonly after initialization).
var Registry map[string]DatasetEntry

// builtinDatasets are always present; the configuration file may override or
// extend them.
var builtinDatasets = []DatasetEntry{
	{
		Name:               "mars-hrsc-mola-blend",
		OriginalDataSource: "https://planetarymaps.usgs.gov/mosaic/Mars/HRSC_MOLA_Blend/Mars_HRSC_MOLA_BlendDEM_Global_200mp_v2.tif",
		DataSource:         "https://drive.google.com/file/d/1G_x3rypkYM_UoqroRskB8oMpKIKr55S3/view?usp=sharing",
		Attribution:        "NASA/USGS Astrogeology Science Center, Mars HRSC MOLA Blended DEM Global 200m v2",
		ChunkWidth:         8192,
		ChunkHeight:        8192,
		Profile: ChunkProfile{
			TotalWidth:     106694,
			TotalHeight:    53347,
			MetersPerPixel: 200.0,
			MaxElevation:   21241.0,
		},
	},
	{
		Name:               "mars-mgs-mola",
		OriginalDataSource: "https://planetarymaps.usgs.gov/mosaic/Mars_MGS_MOLA_DEM_mosaic_global_463m.tif",
		DataSource:         "https://planetarymaps.usgs.gov/mosaic/Mars_MGS_MOLA_DEM_mosaic_global_463m.tif",
		Attribution:        "NASA/USGS Astrogeology Science Center, Mars MGS MOLA DEM Mosaic Global 463m",
		ChunkWidth:         8192,
		ChunkHeight:        8192,
		Profile: ChunkProfile{
			TotalWidth:     46080,
			TotalHeight:    23040,
			MetersPerPixel: 463.0,
			MaxElevation:   21241.0,
		},
	},
}

/*
buildRegistry builds the global dataset registry from the built-in entries and
the configured ones. A configured entry with the name of a built-in entry
replaces it (e.g. to adjust the chunk size or a refreshed archive URL).
*/
func buildRegistry(configured []DatasetEntry) error {
	Registry = make(map[string]DatasetEntry, len(builtinDatasets)+len(configured))

	numberOfBuiltins := 0
	numberOfConfigured := 0
	numberOfOverrides := 0

	for _, entry := range builtinDatasets {
		Registry[entry.Name] = entry
		numberOfBuiltins++
	}

	for _, entry := range configured {
		if entry.Name == "" {
			return fmt.Errorf("configured dataset without Name (OriginalDataSource = [%s])", entry.OriginalDataSource)
		}
		if entry.ChunkWidth == 0 || entry.ChunkHeight == 0 {
			return fmt.Errorf("dataset [%s]: chunk size %dx%d, both dimensions must be positive", entry.Name, entry.ChunkWidth, entry.ChunkHeight)
		}
		err := entry.Profile.validate()
		if err != nil {
			return fmt.Errorf("dataset [%s]: invalid profile: %w", entry.Name, err)
		}
		_, overridden := Registry[entry.Name]
		if overridden {
			numberOfOverrides++
		} else {
			numberOfConfigured++
		}
		Registry[entry.Name] = entry
	}

	slog.Info("dataset registry successfully built", "entries", len(Registry),
		"builtin datasets", numberOfBuiltins, "configured datasets", numberOfConfigured, "overridden datasets", numberOfOverrides)

	return nil
}

/*
getDatasetEntry gets the registry entry for the given dataset name.
*/
func getDatasetEntry(name string) (DatasetEntry, error) {
	entry, found := Registry[name]
	if !found {
		return DatasetEntry{}, fmt.Errorf("dataset [%s] not found in registry", name)
	}
	return entry, nil
}

/*
datasetCatalog returns all registry entries sorted by name.
*/
func datasetCatalog() []DatasetEntry {
	names := make([]string, 0, len(Registry))
	for name := range Registry {
		names = append(names, name)
	}
	sort.Strings(names)

	catalog := make([]DatasetEntry, 0, len(names))
	for _, name := range names {
		catalog = append(catalog, Registry[name])
	}
	return catalog
}

/*
saveRegistry saves the dataset registry as sorted csv file (inventory for
operators, not consumed by the service).
*/
func saveRegistry() error {
	filename := "registry.csv"
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("error [%v] at os.Create()", err)
	}
	defer file.Close()

	// create csv writer
	writer := csv.NewWriter(file)
	defer writer.Flush()

	// write header
	header := []string{"Name", "TotalWidth", "TotalHeight", "MetersPerPixel", "MaxElevation", "ChunkWidth", "ChunkHeight", "OriginalDataSource"}
	err = writer.Write(header)
	if err != nil {
		return fmt.Errorf("error [%v] at writer.Write()", err)
	}

	// iterate over sorted entries
	for _, entry := range datasetCatalog() {
		row := []string{
			entry.Name,
			fmt.Sprintf("%d", entry.Profile.TotalWidth),
			fmt.Sprintf("%d", entry.Profile.TotalHeight),
			fmt.Sprintf("%g", entry.Profile.MetersPerPixel),
			fmt.Sprintf("%g", entry.Profile.MaxElevation),
			fmt.Sprintf("%d", entry.ChunkWidth),
			fmt.Sprintf("%d", entry.ChunkHeight),
			entry.OriginalDataSource,
		}
		err = writer.Write(row)
		if err != nil {
			return fmt.Errorf("error [%v] at writer.Write()", err)
		}
	}

	err = writer.Error()
	if err != nil {
		return fmt.Errorf("error [%v] at writer.Error()", err)
	}

	return nil
}

package neat

import (
	"log/slog"
	"math"
	"sort"
)

// Species represents a group of genetically similar genomes.
type Species struct {
	Key               int             // Unique identifier for the species.
	Created           int             // Generation number when the species was created.
	Representative    *Genome         // Private copy of the representative genome.
	RepresentativeKey int             // Key of the member the representative was copied from.
	Members           map[int]*Genome // Genomes belonging to this species (maps genome key -> genome).
}

// NewSpecies creates a new species.
func NewSpecies(key, generation int) *Species {
	return &Species{
		Key:     key,
		Created: generation,
		Members: make(map[int]*Genome),
	}
}

// Update adjusts the species' representative and members.
func (s *Species) Update(repKey int, representative *Genome, members map[int]*Genome) {
	s.RepresentativeKey = repKey
	s.Representative = representative.Copy()
	s.Members = members
}

// --------------------------- GenomeDistanceCache ---------------------------

// GenomeDistanceCache stores calculated distances between genomes to avoid redundant computations.
type GenomeDistanceCache struct {
	Distances map[[2]*Genome]float64
	Hits      int
	Misses    int
	Config    *CompatibilityConfig
}

// NewGenomeDistanceCache creates a new distance cache.
func NewGenomeDistanceCache(config *CompatibilityConfig) *GenomeDistanceCache {
	return &GenomeDistanceCache{
		Distances: make(map[[2]*Genome]float64),
		Config:    config,
	}
}

// Distance calculates or retrieves the compatibility distance between two
// genomes. Genomes without a matching connection are infinitely far apart.
func (dc *GenomeDistanceCache) Distance(genome1, genome2 *Genome) float64 {
	if d, ok := dc.Distances[[2]*Genome{genome1, genome2}]; ok {
		dc.Hits++
		return d
	}
	if d, ok := dc.Distances[[2]*Genome{genome2, genome1}]; ok {
		dc.Hits++
		return d
	}

	dc.Misses++
	d := CompatibilityDistance(genome1, genome2,
		dc.Config.ExcessCoefficient, dc.Config.DisjointCoefficient, dc.Config.WeightCoefficient)
	if math.IsNaN(d) {
		d = math.Inf(1)
	}
	dc.Distances[[2]*Genome{genome1, genome2}] = d
	return d
}

// --------------------------- SpeciesSet ---------------------------

// SpeciesSet manages the collection of species within a population.
type SpeciesSet struct {
	Species         map[int]*Species // Map species key -> Species
	GenomeToSpecies map[int]int      // Map genome key -> species key
	Indexer         int              // Counter for assigning new species keys (start at 1)
	Config          *CompatibilityConfig
	Logger          *slog.Logger
}

// NewSpeciesSet creates a new species set manager.
func NewSpeciesSet(config *CompatibilityConfig, logger *slog.Logger) *SpeciesSet {
	if logger == nil {
		logger = slog.Default()
	}
	return &SpeciesSet{
		Species:         make(map[int]*Species),
		GenomeToSpecies: make(map[int]int),
		Indexer:         1,
		Config:          config,
		Logger:          logger,
	}
}

// Speciate partitions the population into species based on compatibility distance.
func (ss *SpeciesSet) Speciate(population map[int]*Genome, generation int) {
	if len(population) == 0 {
		ss.Species = make(map[int]*Species)
		ss.GenomeToSpecies = make(map[int]int)
		return
	}

	distanceCache := NewGenomeDistanceCache(ss.Config)

	unspeciated := make(map[int]*Genome, len(population))
	for k, v := range population {
		unspeciated[k] = v
	}
	newRepresentatives := make(map[int]int) // species key -> representative genome key
	newMembers := make(map[int][]int)       // species key -> member genome keys

	// The member closest to each old representative becomes the new one.
	speciesKeys := make([]int, 0, len(ss.Species))
	for sid := range ss.Species {
		speciesKeys = append(speciesKeys, sid)
	}
	sort.Ints(speciesKeys)
	for _, sid := range speciesKeys {
		s := ss.Species[sid]
		if len(unspeciated) == 0 {
			break
		}
		bestKey, bestDist := -1, math.Inf(1)
		for _, gid := range sortedKeys(unspeciated) {
			d := distanceCache.Distance(s.Representative, unspeciated[gid])
			if bestKey == -1 || d < bestDist {
				bestKey, bestDist = gid, d
			}
		}
		if bestDist > ss.Config.Threshold {
			continue
		}
		newRepresentatives[sid] = bestKey
		newMembers[sid] = []int{bestKey}
		delete(unspeciated, bestKey)
	}

	for _, gid := range sortedKeys(unspeciated) {
		g := unspeciated[gid]

		bestSpecies := -1
		minDist := math.Inf(1)
		for _, sid := range sortedKeys(newRepresentatives) {
			d := distanceCache.Distance(population[newRepresentatives[sid]], g)
			if d < ss.Config.Threshold && d < minDist {
				minDist = d
				bestSpecies = sid
			}
		}

		if bestSpecies != -1 {
			newMembers[bestSpecies] = append(newMembers[bestSpecies], gid)
			continue
		}
		newSID := ss.Indexer
		ss.Indexer++
		newRepresentatives[newSID] = gid
		newMembers[newSID] = []int{gid}
	}

	newSpeciesMap := make(map[int]*Species)
	newGenomeToSpeciesMap := make(map[int]int)
	for sid, repKey := range newRepresentatives {
		s := ss.Species[sid]
		if s == nil {
			s = NewSpecies(sid, generation)
			ss.Logger.Debug("created species", "species", sid, "representative", repKey)
		}
		memberMap := make(map[int]*Genome)
		for _, gid := range newMembers[sid] {
			memberMap[gid] = population[gid]
			newGenomeToSpeciesMap[gid] = sid
		}
		s.Update(repKey, population[repKey], memberMap)
		newSpeciesMap[sid] = s
	}
	for sid := range ss.Species {
		if _, ok := newSpeciesMap[sid]; !ok {
			ss.Logger.Debug("species died out", "species", sid)
		}
	}

	ss.Species = newSpeciesMap
	ss.GenomeToSpecies = newGenomeToSpeciesMap

	if len(distanceCache.Distances) > 0 {
		finite := make([]float64, 0, len(distanceCache.Distances))
		for _, d := range distanceCache.Distances {
			if !math.IsInf(d, 1) {
				finite = append(finite, d)
			}
		}
		ss.Logger.Debug("speciated population",
			"generation", generation,
			"species", len(ss.Species),
			"mean_distance", Mean(finite),
			"stdev_distance", Stdev(finite),
			"cache_hits", distanceCache.Hits,
			"cache_misses", distanceCache.Misses)
	}
}

// GetSpeciesID returns the species ID for a given genome ID.
func (ss *SpeciesSet) GetSpeciesID(genomeID int) (int, bool) {
	sid, exists := ss.GenomeToSpecies[genomeID]
	return sid, exists
}

// GetSpecies returns the Species object for a given genome ID.
func (ss *SpeciesSet) GetSpecies(genomeID int) (*Species, bool) {
	sid, exists := ss.GenomeToSpecies[genomeID]
	if !exists {
		return nil, false
	}
	s, exists := ss.Species[sid]
	return s, exists
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

package geo

// CoastalReferences samples the Atlantic, Gulf, and Pacific coastlines at
// regular intervals. More points would improve accuracy at the cost of a
// longer scan; this set keeps distance-to-coast estimates within a few tens
// of kilometers for the continental US.
var CoastalReferences = []Point{
	// Atlantic Coast (north to south)
	{44.3106, -68.7781},  // Maine
	{42.3601, -71.0589},  // Boston
	{40.7128, -74.0060},  // New York
	{38.9072, -77.0369},  // DC area
	{36.8529, -75.9780},  // Virginia Beach
	{33.9191, -78.9487},  // Myrtle Beach
	{32.0809, -80.9009},  // Charleston SC coast
	{31.5383, -81.3912},  // Savannah coast
	{30.3322, -81.6557},  // Jacksonville coast
	{25.7617, -80.1918},  // Miami

	// Gulf Coast (east to west)
	{30.3960, -86.4735},  // Destin FL
	{30.6944, -88.0431},  // Mobile Bay
	{29.3013, -89.4250},  // New Orleans coast
	{29.7604, -95.3698},  // Houston/Galveston
	{27.8006, -97.3964},  // Corpus Christi

	// Pacific Coast (south to north)
	{32.7157, -117.1611}, // San Diego
	{33.7701, -118.1937}, // Los Angeles coast
	{37.7749, -122.4194}, // San Francisco
	{45.5152, -122.6784}, // Portland area
	{47.6062, -122.3321}, // Seattle
}

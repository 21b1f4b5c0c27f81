package tables

// Parameter is one entry of code table 4.2.
type Parameter struct {
	Name string `json:"name"`
	Unit string `json:"unit"`
}

type parameterKey struct {
	discipline, category, number uint8
}

// Code table 4.2 subset: the meteorological (discipline 0), hydrological
// (discipline 1) and oceanographic (discipline 10) products in common use.
var parameters = map[parameterKey]Parameter{
	// Temperature
	{0, 0, 0}:  {"Temperature", "K"},
	{0, 0, 1}:  {"Virtual temperature", "K"},
	{0, 0, 2}:  {"Potential temperature", "K"},
	{0, 0, 4}:  {"Maximum temperature", "K"},
	{0, 0, 5}:  {"Minimum temperature", "K"},
	{0, 0, 6}:  {"Dew point temperature", "K"},
	{0, 0, 7}:  {"Dew point depression", "K"},
	{0, 0, 10}: {"Latent heat net flux", "W m-2"},
	{0, 0, 11}: {"Sensible heat net flux", "W m-2"},
	// Moisture
	{0, 1, 0}:  {"Specific humidity", "kg kg-1"},
	{0, 1, 1}:  {"Relative humidity", "%"},
	{0, 1, 3}:  {"Precipitable water", "kg m-2"},
	{0, 1, 7}:  {"Precipitation rate", "kg m-2 s-1"},
	{0, 1, 8}:  {"Total precipitation", "kg m-2"},
	{0, 1, 11}: {"Snow depth", "m"},
	{0, 1, 13}: {"Water equivalent of accumulated snow depth", "kg m-2"},
	{0, 1, 52}: {"Total precipitation rate", "kg m-2 s-1"},
	// Momentum
	{0, 2, 0}:  {"Wind direction", "degree true"},
	{0, 2, 1}:  {"Wind speed", "m s-1"},
	{0, 2, 2}:  {"u-component of wind", "m s-1"},
	{0, 2, 3}:  {"v-component of wind", "m s-1"},
	{0, 2, 8}:  {"Vertical velocity (pressure)", "Pa s-1"},
	{0, 2, 9}:  {"Vertical velocity (geometric)", "m s-1"},
	{0, 2, 10}: {"Absolute vorticity", "s-1"},
	{0, 2, 22}: {"Wind speed (gust)", "m s-1"},
	// Mass
	{0, 3, 0}: {"Pressure", "Pa"},
	{0, 3, 1}: {"Pressure reduced to MSL", "Pa"},
	{0, 3, 5}: {"Geopotential height", "gpm"},
	// Short-wave and long-wave radiation
	{0, 4, 7}: {"Downward short-wave radiation flux", "W m-2"},
	{0, 5, 3}: {"Downward long-wave radiation flux", "W m-2"},
	// Cloud
	{0, 6, 1}: {"Total cloud cover", "%"},
	{0, 6, 3}: {"Low cloud cover", "%"},
	{0, 6, 4}: {"Medium cloud cover", "%"},
	{0, 6, 5}: {"High cloud cover", "%"},
	// Thermodynamic stability
	{0, 7, 6}: {"Convective available potential energy", "J kg-1"},
	{0, 7, 7}: {"Convective inhibition", "J kg-1"},
	// Forecast radar imagery
	{0, 16, 195}: {"Reflectivity", "dB"},
	{0, 16, 196}: {"Composite reflectivity", "dB"},
	// Physical atmospheric properties
	{0, 19, 0}: {"Visibility", "m"},
	// Hydrology
	{1, 0, 0}: {"Flash flood guidance", "kg m-2"},
	{1, 1, 2}: {"Probability of 0.01 inch of precipitation", "%"},
	// Oceanography
	{10, 0, 3}: {"Significant height of combined wind waves and swell", "m"},
	{10, 0, 4}: {"Direction of wind waves", "degree true"},
	{10, 3, 0}: {"Water temperature", "K"},
}

// Lookup returns the name and unit of a parameter.
func Lookup(discipline, category, number uint8) (Parameter, bool) {
	p, ok := parameters[parameterKey{discipline, category, number}]
	return p, ok
}

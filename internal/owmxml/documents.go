package owmxml

import "encoding/xml"

// CurrentDocument is the <current> root returned by /data/2.5/weather?mode=xml.
type CurrentDocument struct {
	XMLName       xml.Name      `xml:"current"`
	City          City          `xml:"city"`
	Temperature   Temperature   `xml:"temperature"`
	FeelsLike     ValueUnit     `xml:"feels_like"`
	Humidity      ValueUnit     `xml:"humidity"`
	Pressure      ValueUnit     `xml:"pressure"`
	Wind          Wind          `xml:"wind"`
	Clouds        Clouds        `xml:"clouds"`
	Visibility    Value         `xml:"visibility"`
	Precipitation Precipitation `xml:"precipitation"`
	Weather       WeatherSymbol `xml:"weather"`
	LastUpdate    Value         `xml:"lastupdate"`
}

type City struct {
	ID       string `xml:"id,attr"`
	Name     string `xml:"name,attr"`
	Coord    Coord  `xml:"coord"`
	Country  string `xml:"country"`
	Timezone string `xml:"timezone"`
	Sun      Sun    `xml:"sun"`
}

type Coord struct {
	Lon string `xml:"lon,attr"`
	Lat string `xml:"lat,attr"`
}

type Sun struct {
	Rise string `xml:"rise,attr"`
	Set  string `xml:"set,attr"`
}

type Temperature struct {
	Value string `xml:"value,attr"`
	Min   string `xml:"min,attr"`
	Max   string `xml:"max,attr"`
	Unit  string `xml:"unit,attr"`
}

type ValueUnit struct {
	Value string `xml:"value,attr"`
	Unit  string `xml:"unit,attr"`
}

type Value struct {
	Value string `xml:"value,attr"`
}

type Wind struct {
	Speed     WindSpeed     `xml:"speed"`
	Gusts     string        `xml:"gusts"`
	Direction WindDirection `xml:"direction"`
}

type WindSpeed struct {
	Value string `xml:"value,attr"`
	Unit  string `xml:"unit,attr"`
	Name  string `xml:"name,attr"`
}

type WindDirection struct {
	Value string `xml:"value,attr"`
	Code  string `xml:"code,attr"`
	Name  string `xml:"name,attr"`
}

type Clouds struct {
	Value string `xml:"value,attr"`
	Name  string `xml:"name,attr"`
}

type Precipitation struct {
	Value string `xml:"value,attr,omitempty"`
	Mode  string `xml:"mode,attr"`
	Unit  string `xml:"unit,attr,omitempty"`
}

type WeatherSymbol struct {
	Number string `xml:"number,attr"`
	Value  string `xml:"value,attr"`
	Icon   string `xml:"icon,attr"`
}

// ForecastDocument is the <weatherdata> root returned by /data/2.5/forecast?mode=xml.
type ForecastDocument struct {
	XMLName  xml.Name         `xml:"weatherdata"`
	Location ForecastLocation `xml:"location"`
	Credit   string           `xml:"credit"`
	Meta     Meta             `xml:"meta"`
	Sun      Sun              `xml:"sun"`
	Forecast ForecastList     `xml:"forecast"`
}

type ForecastLocation struct {
	Name     string   `xml:"name"`
	Type     string   `xml:"type"`
	Country  string   `xml:"country"`
	Timezone string   `xml:"timezone"`
	Position Position `xml:"location"`
}

type Position struct {
	Altitude  string `xml:"altitude,attr"`
	Latitude  string `xml:"latitude,attr"`
	Longitude string `xml:"longitude,attr"`
	Geobase   string `xml:"geobase,attr"`
	GeobaseID string `xml:"geobaseid,attr"`
}

type Meta struct {
	LastUpdate string `xml:"lastupdate"`
	CalcTime   string `xml:"calctime"`
	NextUpdate string `xml:"nextupdate"`
}

type ForecastList struct {
	Times []ForecastTime `xml:"time"`
}

type ForecastTime struct {
	From          string                `xml:"from,attr"`
	To            string                `xml:"to,attr"`
	Symbol        ForecastSymbol        `xml:"symbol"`
	Precipitation ForecastPrecipitation `xml:"precipitation"`
	WindDirection ForecastWindDirection `xml:"windDirection"`
	WindSpeed     ForecastWindSpeed     `xml:"windSpeed"`
	Temperature   Temperature           `xml:"temperature"`
	Pressure      ValueUnit             `xml:"pressure"`
	Humidity      ValueUnit             `xml:"humidity"`
	Clouds        ForecastClouds        `xml:"clouds"`
	Visibility    Value                 `xml:"visibility"`
}

type ForecastSymbol struct {
	Number string `xml:"number,attr"`
	Name   string `xml:"name,attr"`
	Var    string `xml:"var,attr"`
}

type ForecastPrecipitation struct {
	Unit  string `xml:"unit,attr,omitempty"`
	Value string `xml:"value,attr,omitempty"`
	Type  string `xml:"type,attr,omitempty"`
}

type ForecastWindDirection struct {
	Deg  string `xml:"deg,attr"`
	Code string `xml:"code,attr"`
	Name string `xml:"name,attr"`
}

type ForecastWindSpeed struct {
	Mps  string `xml:"mps,attr"`
	Unit string `xml:"unit,attr"`
	Name string `xml:"name,attr"`
}

type ForecastClouds struct {
	Value string `xml:"value,attr"`
	All   string `xml:"all,attr"`
	Unit  string `xml:"unit,attr"`
}

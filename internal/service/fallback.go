package service

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"agri-advisor/internal/commodity"
	"agri-advisor/internal/models"
)

type topic int

const (
	topicNone topic = iota
	topicWatering
	topicPrice
	topicPlanting
)

// Keywords match a whole query token or its start ("irrigat" matches
// "irrigation"). Tokens naming a commodity never match, so "watermelon" is not
// about watering.
var topicKeywords = []struct {
	topic    topic
	keywords []string
}{
	{topicPrice, []string{"price", "rate", "mandi", "market", "sell", "bhav", "bhao", "daam", "keemat", "भाव", "दाम", "कीमत", "मंडी", "दर", "बाजार"}},
	{topicWatering, []string{"water", "irrigat", "pani", "paani", "sinchai", "पानी", "सिंचाई", "पाणी", "सिंचन"}},
	{topicPlanting, []string{"plant", "sow", "seed", "grow", "buvai", "buwai", "bona", "beej", "बुवाई", "बोना", "बीज", "पेरणी", "लागवड"}},
}

var topicResolver = sync.OnceValue(commodity.MustResolver)

func detectTopic(query string) topic {
	crops := make(map[string]struct{})
	for _, m := range topicResolver().ResolveDetailed(query) {
		if m.Method == commodity.MethodExact || m.Method == commodity.MethodSubstring {
			crops[m.Token] = struct{}{}
		}
	}

	var tokens []string
	for _, token := range strings.Fields(commodity.Normalize(query)) {
		if _, ok := crops[token]; !ok {
			tokens = append(tokens, token)
		}
	}

	for _, t := range topicKeywords {
		for _, k := range t.keywords {
			for _, token := range tokens {
				if strings.HasPrefix(token, k) {
					return t.topic
				}
			}
		}
	}
	return topicNone
}

// FallbackAnswer is the rule-based answer used when the completion service
// fails or times out.
func FallbackAnswer(query, lang string, weather models.WeatherSnapshot, quotes []models.MarketQuote, season Season) string {
	switch detectTopic(query) {
	case topicWatering:
		return wateringAnswer(lang, weather)
	case topicPrice:
		if len(quotes) > 0 {
			return priceAnswer(lang, quotes[0])
		}
		return pick(lang,
			"Market prices are not available right now. Please check with your nearest mandi.",
			"अभी मंडी भाव उपलब्ध नहीं हैं। कृपया नज़दीकी मंडी से पता करें।",
			"सध्या बाजारभाव उपलब्ध नाहीत. कृपया जवळच्या बाजार समितीत चौकशी करा.",
		)
	case topicPlanting:
		crops := strings.Join(season.Crops, ", ")
		return pick(lang,
			fmt.Sprintf("It is the %s season. Suitable crops now include %s. Use certified seed and sow after a good soaking rain or pre-sowing irrigation.", season.Name, crops),
			fmt.Sprintf("अभी %s का मौसम है। इस समय %s जैसी फसलें उपयुक्त हैं। प्रमाणित बीज लें और अच्छी नमी में बुवाई करें।", season.Name, crops),
			fmt.Sprintf("सध्या %s हंगाम आहे. या काळात %s ही पिके योग्य आहेत. प्रमाणित बियाणे वापरा आणि जमिनीत ओल असताना पेरणी करा.", season.Name, crops),
		)
	default:
		return pick(lang,
			"I could not find a specific answer. Please ask a more specific question, for example about watering or market prices for your crop.",
			"इसका सटीक उत्तर नहीं मिला। कृपया अपनी फसल की सिंचाई या मंडी भाव के बारे में स्पष्ट प्रश्न पूछें।",
			"नेमके उत्तर सापडले नाही. कृपया आपल्या पिकाचे पाणी व्यवस्थापन किंवा बाजारभाव याबद्दल नेमका प्रश्न विचारा.",
		)
	}
}

func wateringAnswer(lang string, w models.WeatherSnapshot) string {
	temp := strconv.FormatFloat(w.TemperatureC, 'f', 1, 64)
	humidity := strconv.FormatFloat(w.HumidityPct, 'f', 0, 64)

	switch {
	case w.RainfallMM >= 5 || w.HumidityPct >= 75:
		return pick(lang,
			fmt.Sprintf("Humidity is high at %s%% with rain around, so skip watering today and check soil moisture tomorrow.", humidity),
			fmt.Sprintf("नमी %s%% है और बारिश की संभावना है, आज सिंचाई न करें और कल मिट्टी की नमी जांचें।", humidity),
			fmt.Sprintf("आर्द्रता %s%% आहे आणि पावसाची शक्यता आहे, आज पाणी देऊ नका आणि उद्या जमिनीतील ओल तपासा.", humidity),
		)
	case w.TemperatureC >= 32:
		return pick(lang,
			fmt.Sprintf("It is hot at %s°C with humidity at %s%%. Water early in the morning or in the evening to cut evaporation.", temp, humidity),
			fmt.Sprintf("तापमान %s°C और नमी %s%% है। सुबह जल्दी या शाम को सिंचाई करें ताकि पानी कम उड़े।", temp, humidity),
			fmt.Sprintf("तापमान %s°C आणि आर्द्रता %s%% आहे. सकाळी लवकर किंवा संध्याकाळी पाणी द्या.", temp, humidity),
		)
	default:
		return pick(lang,
			fmt.Sprintf("At %s°C and %s%% humidity, water when the top 5 cm of soil feels dry.", temp, humidity),
			fmt.Sprintf("तापमान %s°C और नमी %s%% है। जब ऊपर की 5 सेमी मिट्टी सूखी लगे तब सिंचाई करें।", temp, humidity),
			fmt.Sprintf("तापमान %s°C आणि आर्द्रता %s%% आहे. वरची 5 सेमी माती कोरडी वाटल्यावर पाणी द्या.", temp, humidity),
		)
	}
}

func priceAnswer(lang string, q models.MarketQuote) string {
	price := strconv.FormatFloat(q.Price, 'f', -1, 64)
	answer := pick(lang,
		fmt.Sprintf("%s is selling at Rs %s per %s in %s, trend %s.", q.Commodity, price, q.Unit, q.Market, q.Trend),
		fmt.Sprintf("%s का भाव %s में Rs %s प्रति %s है, रुझान %s।", q.Commodity, q.Market, price, q.Unit, q.Trend),
		fmt.Sprintf("%s चा दर %s येथे Rs %s प्रति %s आहे, कल %s.", q.Commodity, q.Market, price, q.Unit, q.Trend),
	)
	if q.IsSynthetic() {
		answer += pick(lang,
			" This is a regional estimate, not a live price.",
			" यह क्षेत्रीय अनुमान है, लाइव भाव नहीं।",
			" हा प्रादेशिक अंदाज आहे, थेट दर नाही.",
		)
	}
	return answer
}

func pick(lang, en, hi, mr string) string {
	switch lang {
	case "hi":
		return hi
	case "mr":
		return mr
	default:
		return en
	}
}

var apologyPhrases = []string{"sorry", "i cannot", "i can't", "unable to", "could not find", "माफ", "क्षमा", "सटीक उत्तर नहीं", "नेमके उत्तर सापडले नाही", "maaf"}

// Confidence is a coarse UI signal from answer length and tone, not a
// statistical measure.
func Confidence(answer string) float64 {
	lower := strings.ToLower(answer)
	for _, p := range apologyPhrases {
		if strings.Contains(lower, p) {
			return 0.5
		}
	}
	switch n := utf8.RuneCountInString(strings.TrimSpace(answer)); {
	case n >= 200:
		return 0.85
	case n >= 60:
		return 0.7
	default:
		return 0.5
	}
}

package universe

import "stockweather/internal/model"

func kr(ticker, name, sector string, f model.Fundamentals) Entry {
	return Entry{
		Listing: model.Listing{
			Ticker: ticker,
			Name:   name,
			Sector: sector,
			Market: model.MarketKR,
		},
		YahooSymbol:  ticker + ".KS",
		Fundamentals: f,
	}
}

func kq(ticker, name, sector string, f model.Fundamentals) Entry {
	e := kr(ticker, name, sector, f)
	e.YahooSymbol = ticker + ".KQ"
	return e
}

func us(ticker, name, sector string, f model.Fundamentals) Entry {
	return Entry{
		Listing: model.Listing{
			Ticker: ticker,
			Name:   name,
			Sector: sector,
			Market: model.MarketUS,
		},
		YahooSymbol:  ticker,
		Fundamentals: f,
	}
}

func fnd(roe, epsYoY, revYoY, pe float64) model.Fundamentals {
	return model.Fundamentals{
		ROE: roe, EPSYoY: epsYoY, RevenueYoY: revYoY, PERatio: pe,
		HasROE: true, HasEPS: true, HasRevenue: true, HasPE: true,
	}
}

// Reference fundamentals are trailing-year approximations, refreshed rarely;
// live metrics override them when the quote API supplies any.
var seed = []Entry{
	// KOSPI majors
	kr("005930", "Samsung Electronics", "Electronics", fnd(9.2, -28, -14, 13.5)),
	kr("000660", "SK Hynix", "Electronics", fnd(6.5, 45, 32, 18.2)),
	kr("005490", "POSCO Holdings", "Steel", fnd(5.8, -30, -9, 11.0)),
	kr("005380", "Hyundai Motor", "Auto", fnd(13.2, 8, 14, 5.4)),
	kr("035420", "NAVER", "Internet", fnd(7.9, 18, 9, 24.1)),
	kr("051910", "LG Chem", "Chemical", fnd(4.6, -48, -2, 21.7)),
	kr("006400", "Samsung SDI", "Electronics", fnd(8.8, -12, -6, 14.9)),
	kr("035720", "Kakao", "Internet", fnd(2.1, -35, 4, 38.6)),
	kr("003550", "LG Corp", "Holding", fnd(6.3, 3, 2, 7.2)),
	kr("105560", "KB Financial", "Finance", fnd(9.9, 11, 7, 5.1)),
	kr("055550", "Shinhan Financial", "Finance", fnd(8.6, 4, 5, 4.8)),
	kr("207940", "Samsung Biologics", "Bio", fnd(10.5, 22, 19, 62.3)),
	kr("068270", "Celltrion", "Bio", fnd(8.1, 12, 10, 44.0)),
	kr("005935", "Samsung Electronics Pref", "Electronics", fnd(9.2, -28, -14, 11.1)),
	kr("000270", "Kia", "Auto", fnd(17.6, 14, 16, 4.5)),
	kr("012330", "Hyundai Mobis", "Auto", fnd(7.4, 6, 8, 6.7)),
	kr("028260", "Samsung C&T", "Holding", fnd(6.9, 9, 6, 9.8)),
	kr("066570", "LG Electronics", "Electronics", fnd(5.2, -8, 1, 10.3)),

	// KOSDAQ majors; growth names with patchy financials
	kq("247540", "EcoPro BM", "Battery", model.Fundamentals{
		EPSYoY: -42, RevenueYoY: 12, PERatio: 88.1,
		HasEPS: true, HasRevenue: true, HasPE: true,
	}),
	kq("086520", "EcoPro", "Chemical", model.Fundamentals{
		RevenueYoY: 21, HasRevenue: true,
	}),
	kq("035900", "JYP Entertainment", "Entertainment", fnd(26.4, 30, 25, 19.5)),
	kq("293490", "Kakao Games", "Gaming", model.Fundamentals{
		ROE: 1.8, RevenueYoY: -11, HasROE: true, HasRevenue: true,
	}),
	kq("112040", "Wemade", "Gaming", model.Fundamentals{
		RevenueYoY: 6, PERatio: 0, HasRevenue: true,
	}),

	// US large caps
	us("AAPL", "Apple", "IT", fnd(147.0, 9, 2, 29.8)),
	us("MSFT", "Microsoft", "IT", fnd(38.5, 20, 16, 35.2)),
	us("GOOGL", "Alphabet", "IT", fnd(27.4, 27, 13, 24.6)),
	us("AMZN", "Amazon", "Consumer", fnd(17.5, 94, 12, 42.3)),
	us("META", "Meta Platforms", "IT", fnd(28.0, 73, 22, 26.9)),
	us("TSLA", "Tesla", "Auto", fnd(23.7, -23, 19, 68.4)),
	us("NVDA", "NVIDIA", "IT", fnd(69.2, 288, 126, 65.7)),
	us("JPM", "JPMorgan Chase", "Finance", fnd(17.0, 24, 23, 11.2)),
	us("JNJ", "Johnson & Johnson", "Bio", fnd(24.9, 7, 6, 15.1)),
	us("V", "Visa", "Finance", fnd(49.5, 16, 10, 30.5)),
}

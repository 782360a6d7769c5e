package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"

	qhttp "diapredict/http"
	"diapredict/inference"
	"diapredict/ml"
)

func main() {
	modelPath := flag.String("model_path", "model.json", "model artifact path")
	record := flag.String("record", "", "patient record as JSON; runs one prediction when set")
	flag.Parse()

	est, err := ml.LoadModel(*modelPath)
	if err != nil {
		log.Fatalf("failed to load model: %v", err)
	}

	holder := ml.NewHolder()
	m := ml.NewLoadedModel(est, *modelPath)
	holder.Set(m)

	fmt.Printf("model: %s\n", m.Type)
	fmt.Printf("importance_source: %s\n", m.ImportanceSource)
	printImportance(m.Importance)

	if *record == "" {
		return
	}

	patient, err := qhttp.DecodePatientRecord([]byte(*record))
	if err != nil {
		log.Fatalf("invalid record: %v", err)
	}

	result, err := inference.NewService(holder, nil, nil).Predict(context.Background(), patient)
	if err != nil {
		log.Fatalf("prediction failed: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		log.Fatalf("failed to write result: %v", err)
	}
}

// printImportance lists features by descending weight.
func printImportance(importance map[string]float64) {
	if len(importance) == 0 {
		return
	}
	names := ml.FeatureNameList()
	sort.SliceStable(names, func(i, j int) bool {
		return importance[names[i]] > importance[names[j]]
	})
	for _, name := range names {
		fmt.Printf("  %-26s %.4f\n", name, importance[name])
	}
}
